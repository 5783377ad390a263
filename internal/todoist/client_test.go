package todoist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestListTasks_DrainsAllPages(t *testing.T) {
	// Three pages of sizes 2, 3, 1.
	pages := map[string]taskPage{
		"": {
			Results:    []Task{{ID: "T1", Content: "one"}, {ID: "T2", Content: "two"}},
			NextCursor: "c1",
		},
		"c1": {
			Results:    []Task{{ID: "T3"}, {ID: "T4"}, {ID: "T5"}},
			NextCursor: "c2",
		},
		"c2": {
			Results: []Task{{ID: "T6"}},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks" {
			t.Errorf("Expected /tasks, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Error("Expected test-token authorization")
		}
		if got := r.URL.Query().Get("project_id"); got != "P1" {
			t.Errorf("Expected project_id=P1, got %q", got)
		}
		page, ok := pages[r.URL.Query().Get("cursor")]
		if !ok {
			t.Fatalf("Unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	client := NewClient("test-token")
	client.baseURL = server.URL

	tasks, err := client.ListTasks(context.Background(), "P1")
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 6 {
		t.Fatalf("Expected 6 tasks, got %d", len(tasks))
	}
	wantOrder := []string{"T1", "T2", "T3", "T4", "T5", "T6"}
	for i, task := range tasks {
		if task.ID != wantOrder[i] {
			t.Errorf("Task %d: expected %s, got %s", i, wantOrder[i], task.ID)
		}
	}
}

func TestListTasks_PageFailureAbortsDrain(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode(taskPage{
				Results:    []Task{{ID: "T1"}},
				NextCursor: "c1",
			})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "boom"}`))
	}))
	defer server.Close()

	client := NewClient("test-token")
	client.baseURL = server.URL

	tasks, err := client.ListTasks(context.Background(), "P1")
	if err == nil {
		t.Fatal("Expected error on failed page")
	}
	if tasks != nil {
		t.Errorf("Expected no partial result, got %d tasks", len(tasks))
	}
}

func TestListSections(t *testing.T) {
	want := []Section{{ID: "S1", Name: "Work"}, {ID: "S2", Name: "Home"}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sections" {
			t.Errorf("Expected /sections, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(sectionPage{Results: want})
	}))
	defer server.Close()

	client := NewClient("test-token")
	client.baseURL = server.URL

	sections, err := client.ListSections(context.Background(), "P1")
	if err != nil {
		t.Fatalf("ListSections failed: %v", err)
	}
	if diff := cmp.Diff(want, sections); diff != "" {
		t.Errorf("Sections mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveTask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/tasks/T1/move" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["section_id"] != "S2" {
			t.Errorf("Expected section_id=S2, got %q", body["section_id"])
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient("test-token")
	client.baseURL = server.URL

	if err := client.MoveTask(context.Background(), "T1", "S2"); err != nil {
		t.Fatalf("MoveTask failed: %v", err)
	}
}

func TestMoveTask_RemoteRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": "read-only project"}`)
	}))
	defer server.Close()

	client := NewClient("test-token")
	client.baseURL = server.URL

	err := client.MoveTask(context.Background(), "T1", "S2")
	if err == nil {
		t.Fatal("Expected error on 403")
	}
}

func TestClient_MissingToken(t *testing.T) {
	client := NewClient("")
	if _, err := client.ListTasks(context.Background(), "P1"); err == nil {
		t.Error("Expected error without API token")
	}
	if err := client.MoveTask(context.Background(), "T1", "S1"); err == nil {
		t.Error("Expected error without API token")
	}
}
