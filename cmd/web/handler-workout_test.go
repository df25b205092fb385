package main

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/petrarun/internal/e2etest"
	"github.com/myrjola/petrarun/internal/testhelpers"
)

// submit posts the form with the given action and fails the test on error.
func submit(t *testing.T, client *e2etest.Client, doc *goquery.Document, action string) *goquery.Document {
	t.Helper()
	next, err := client.SubmitForm(t.Context(), doc, action, nil)
	if err != nil {
		t.Fatalf("Failed to submit %s: %v", action, err)
	}
	return next
}

func text(doc *goquery.Document, selector string) string {
	return strings.Join(strings.Fields(doc.Find(selector).First().Text()), " ")
}

func Test_application_workoutFlow(t *testing.T) {
	var (
		ctx = t.Context()
		doc *goquery.Document
		err error
	)
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	if doc, err = client.GetDoc(ctx, "/"); err != nil {
		t.Fatalf("Failed to get home: %v", err)
	}
	doc = submit(t, client, doc, "/plans/1/start")

	t.Run("Ready to start", func(t *testing.T) {
		if doc.Url.Path != "/workout" {
			t.Fatalf("Expected to land on /workout, got %s", doc.Url.Path)
		}
		if got := text(doc, "section.workout h1"); got != "Quick start" {
			t.Errorf("Expected plan name heading, got %q", got)
		}
		if got := text(doc, "article.exercise h2"); got != "Jumping jacks" {
			t.Errorf("Expected first exercise Jumping jacks, got %q", got)
		}
		if doc.Find("button[data-command='start']").Length() != 1 {
			t.Error("Expected a start button")
		}
		if doc.Find(".description strong:contains('steady rhythm')").Length() != 1 {
			t.Error("Expected the markdown description to be rendered")
		}
	})

	t.Run("Pause and resume", func(t *testing.T) {
		doc = submit(t, client, doc, "/workout/start")
		if got := text(doc, "p.rep-progress"); got != "1:00 left" {
			t.Errorf("Expected full countdown, got %q", got)
		}
		doc = submit(t, client, doc, "/workout/pause")
		if got := text(doc, "p.status"); got != "Paused" {
			t.Errorf("Expected paused status, got %q", got)
		}
		if doc.Find("button[data-command='rep']").Length() != 0 {
			t.Error("Expected no rep button while paused")
		}
		doc = submit(t, client, doc, "/workout/resume")
		if doc.Find("p.status").Length() != 0 {
			t.Errorf("Expected no status after resume, got %q", text(doc, "p.status"))
		}
	})

	t.Run("Rest between exercises", func(t *testing.T) {
		doc = submit(t, client, doc, "/workout/skip-set")
		if got := text(doc, "p.status"); got != "Rest" {
			t.Errorf("Expected rest status, got %q", got)
		}
		if got := text(doc, "article.exercise h2"); got != "Bodyweight squat" {
			t.Errorf("Expected the upcoming exercise during rest, got %q", got)
		}
		if got := text(doc, "p.rep-progress"); got != "Rest 0:15" {
			t.Errorf("Expected rest countdown, got %q", got)
		}
		doc = submit(t, client, doc, "/workout/skip-rest")
		if got := text(doc, "p.set-progress"); got != "Set 1 of 2" {
			t.Errorf("Expected first set, got %q", got)
		}
	})

	t.Run("Counting reps", func(t *testing.T) {
		for range 3 {
			doc = submit(t, client, doc, "/workout/rep")
		}
		if got := text(doc, "p.rep-progress"); got != "3 / 10 reps" {
			t.Errorf("Expected 3 reps, got %q", got)
		}
		for range 7 {
			doc = submit(t, client, doc, "/workout/rep")
		}
		if got := text(doc, "p.rep-progress"); got != "Rest 0:20" {
			t.Errorf("Expected set rest after the target reps, got %q", got)
		}
		if got := text(doc, "p.set-progress"); got != "Set 2 of 2" {
			t.Errorf("Expected second set, got %q", got)
		}
		doc = submit(t, client, doc, "/workout/skip-rest")
		for range 10 {
			doc = submit(t, client, doc, "/workout/rep")
		}
		doc = submit(t, client, doc, "/workout/skip-rest")
		if got := text(doc, "article.exercise h2"); got != "Standing hamstring stretch" {
			t.Errorf("Expected the last exercise, got %q", got)
		}
		if doc.Find("p.up-next").Length() != 0 {
			t.Error("Expected nothing up next on the last exercise")
		}
	})

	var completionPath string
	t.Run("Completion summary", func(t *testing.T) {
		doc = submit(t, client, doc, "/workout/skip-set")
		completionPath = doc.Url.Path
		if !strings.HasPrefix(completionPath, "/completions/") {
			t.Fatalf("Expected a redirect to the completion page, got %s", completionPath)
		}
		if got := text(doc, "p.outcome"); got != "Every exercise done!" {
			t.Errorf("Expected a fully completed workout, got %q", got)
		}
		if got := doc.Find("li.exercise").Length(); got != 3 {
			t.Errorf("Expected 3 completed exercises, got %d", got)
		}
		if got := text(doc, "li.exercise:nth-child(2) .sets"); got != "2 sets: 10, 10" {
			t.Errorf("Expected squat sets, got %q", got)
		}
	})

	t.Run("Rate the workout", func(t *testing.T) {
		doc, err = client.SubmitForm(ctx, doc, completionPath+"/rating", map[string]string{"How did it feel?": "4"})
		if err != nil {
			t.Fatalf("Failed to rate: %v", err)
		}
		if got := text(doc, "p.rating .stars"); got != "★★★★☆" {
			t.Errorf("Expected 4 stars, got %q", got)
		}

		var rating int
		id := strings.TrimPrefix(completionPath, "/completions/")
		if err = server.DB().QueryRowContext(ctx,
			"SELECT user_rating FROM workout_completions WHERE id = ?", id).Scan(&rating); err != nil {
			t.Fatalf("Failed to query rating: %v", err)
		}
		if rating != 4 {
			t.Errorf("Expected stored rating 4, got %d", rating)
		}
	})

	t.Run("History lists the workout", func(t *testing.T) {
		if doc, err = client.GetDoc(ctx, "/"); err != nil {
			t.Fatalf("Failed to get home: %v", err)
		}
		if got := doc.Find("a.completion").Length(); got != 1 {
			t.Errorf("Expected 1 recent workout, got %d", got)
		}
		if href, _ := doc.Find("a.completion").Attr("href"); href != completionPath {
			t.Errorf("Expected link to %s, got %s", completionPath, href)
		}
		if doc.Find("a.resume").Length() != 0 {
			t.Error("Expected no resume link after completion")
		}
	})
}

func Test_application_abandonWorkout(t *testing.T) {
	var (
		ctx = t.Context()
		doc *goquery.Document
		err error
	)
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	if doc, err = client.GetDoc(ctx, "/"); err != nil {
		t.Fatalf("Failed to get home: %v", err)
	}
	doc = submit(t, client, doc, "/plans/2/start")
	doc = submit(t, client, doc, "/workout/start")

	if doc, err = client.GetDoc(ctx, "/"); err != nil {
		t.Fatalf("Failed to get home: %v", err)
	}
	if doc.Find("a.resume").Length() != 1 {
		t.Fatal("Expected a resume link for the running workout")
	}

	if doc, err = client.GetDoc(ctx, "/workout"); err != nil {
		t.Fatalf("Failed to get workout: %v", err)
	}
	// Rejected commands leave the workout unchanged.
	if doc, err = client.PostForm(ctx, "/workout/skip-rest", nil); err != nil {
		t.Fatalf("Failed to post skip-rest: %v", err)
	}
	if got := text(doc, "article.exercise h2"); got != "Arm circles" {
		t.Errorf("Expected Arm circles, got %q", got)
	}

	doc = submit(t, client, doc, "/workout/end")
	if doc.Url.Path != "/" {
		t.Errorf("Expected to land on the home page, got %s", doc.Url.Path)
	}
	if doc.Find("a.resume").Length() != 0 || doc.Find("a.completion").Length() != 0 {
		t.Error("Expected an abandoned workout to leave no trace")
	}

	// Without a workout the workout page sends the browser home.
	if doc, err = client.GetDoc(ctx, "/workout"); err != nil {
		t.Fatalf("Failed to get workout: %v", err)
	}
	if doc.Url.Path != "/" {
		t.Errorf("Expected a redirect home, got %s", doc.Url.Path)
	}
}
