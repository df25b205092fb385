package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myrjola/petrarun/internal/e2etest"
	"github.com/myrjola/petrarun/internal/logging"
	"github.com/myrjola/petrarun/internal/testhelpers"
)

type smokeSession struct {
	ID    string `json:"id"`
	State struct {
		Phase string `json:"phase"`
	} `json:"state"`
}

// TestWorkoutSession starts a workout on the first plan, checks that it runs, and abandons it.
func TestWorkoutSession(client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	doc, err := client.GetDoc(ctx, "/")
	if err != nil {
		return fmt.Errorf("get home: %w", err)
	}
	if doc.Find("article.plan").Length() == 0 {
		return fmt.Errorf("home page lists no plans")
	}

	var plans []struct {
		ID int `json:"id"`
	}
	if err = expectJSON(ctx, client, http.MethodGet, "/api/plans", nil, &plans, http.StatusOK); err != nil {
		return err
	}
	if len(plans) == 0 {
		return fmt.Errorf("no plans")
	}

	var sess smokeSession
	if err = expectJSON(ctx, client, http.MethodPost, "/api/sessions", map[string]int{"plan_id": plans[0].ID},
		&sess, http.StatusCreated); err != nil {
		return err
	}
	path := "/api/sessions/" + sess.ID
	if err = expectJSON(ctx, client, http.MethodPost, path+"/start", nil, &sess, http.StatusOK); err != nil {
		return err
	}
	if sess.State.Phase != "exercise_active" {
		return fmt.Errorf("unexpected phase after start: %s", sess.State.Phase)
	}
	return expectJSON(ctx, client, http.MethodDelete, path, nil, nil, http.StatusNoContent)
}

func expectJSON(ctx context.Context, client *e2etest.Client, method, path string, in, out any, want int) error {
	status, err := client.DoJSON(ctx, method, path, in, out)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if status != want {
		return fmt.Errorf("%s %s: unexpected status code: %d", method, path, status)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		client   *e2etest.Client
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err = TestWorkoutSession(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing workout session", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
