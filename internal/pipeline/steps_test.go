package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/agent"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/extract"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/fetch"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/llm"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
)

const testPage = `<!DOCTYPE html>
<html lang="en">
<head>
<title>Sample Page</title>
<meta name="description" content="A sample page for tests">
<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
<h1>Welcome</h1>
<p>Some welcoming prose for the analyzer to read.</p>
</body>
</html>`

// stubModel is an llm.Client that always returns the same verdict.
type stubModel struct {
	response string
	err      error
	usage    model.Usage
}

func (c *stubModel) GenerateText(_ context.Context, _ string) (string, error) {
	return c.response, c.err
}

func (c *stubModel) GenerateFromImages(_ context.Context, _ string, _ []llm.Image) (string, error) {
	return c.response, c.err
}

func (c *stubModel) ModelName() string { return "stub-model" }

func (c *stubModel) Usage() model.Usage { return c.usage }

// dimensionResults builds a full result map with a uniform score.
func dimensionResults(score float64) map[string]model.AgentResult {
	results := make(map[string]model.AgentResult, len(model.DimensionKeys))
	for _, key := range model.DimensionKeys {
		results[key] = model.AgentResult{
			AgentName: key,
			Score:     score,
			Findings:  []string{},
			Summary:   "ok",
		}
	}
	return results
}

// TestFetchStep tests the page retrieval step.
func TestFetchStep(t *testing.T) {
	t.Parallel()

	t.Run("stores document and snapshot skeleton", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(testPage))
		}))
		defer srv.Close()

		fetcher := fetch.New(5*time.Second,
			fetch.WithHTTPClient(srv.Client()),
			fetch.WithLogger(discardLogger()),
		)
		step := NewFetchStep(fetcher, WithFetchLogger(discardLogger()))

		report := model.NewReport(srv.URL)
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(report.RawHTML, "Sample Page") {
			t.Error("expected raw HTML to be stored on the report")
		}
		if report.Snapshot == nil {
			t.Fatal("expected snapshot skeleton on the report")
		}
		if !strings.HasPrefix(report.Snapshot.URL, srv.URL) {
			t.Errorf("expected snapshot URL %q to start with %q", report.Snapshot.URL, srv.URL)
		}
		if report.Snapshot.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", report.Snapshot.StatusCode)
		}
	})

	t.Run("propagates fetch failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()

		fetcher := fetch.New(5*time.Second,
			fetch.WithHTTPClient(srv.Client()),
			fetch.WithLogger(discardLogger()),
		)
		step := NewFetchStep(fetcher, WithFetchLogger(discardLogger()))

		report := model.NewReport(srv.URL)
		err := step.Do(context.Background(), report)
		if !errors.Is(err, fetch.ErrBadStatus) {
			t.Fatalf("expected ErrBadStatus, got %v", err)
		}
		if report.RawHTML != "" {
			t.Error("expected no document on failed fetch")
		}
	})
}

// TestExtractStep tests the snapshot extraction step.
func TestExtractStep(t *testing.T) {
	t.Parallel()

	t.Run("builds the page snapshot", func(t *testing.T) {
		t.Parallel()

		report := model.NewReport("https://example.com/")
		report.RawHTML = testPage
		skeleton := model.NewSnapshot("https://example.com/")
		skeleton.LoadTimeSeconds = 0.5
		skeleton.StatusCode = http.StatusOK
		report.Snapshot = skeleton

		step := NewExtractStep(extract.New(), WithExtractLogger(discardLogger()))
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		snap := report.Snapshot
		if snap.Title != "Sample Page" {
			t.Errorf("expected title %q, got %q", "Sample Page", snap.Title)
		}
		if !snap.HasViewportMeta {
			t.Error("expected viewport meta to be detected")
		}
		if !snap.HasSSL {
			t.Error("expected SSL flag from https final URL")
		}
		if snap.LoadTimeSeconds != 0.5 {
			t.Errorf("expected load time to be carried over, got %v", snap.LoadTimeSeconds)
		}
		if snap.StatusCode != http.StatusOK {
			t.Errorf("expected status to be carried over, got %d", snap.StatusCode)
		}
	})

	t.Run("fails without a fetched document", func(t *testing.T) {
		t.Parallel()

		step := NewExtractStep(extract.New(), WithExtractLogger(discardLogger()))
		err := step.Do(context.Background(), model.NewReport("https://example.com/"))
		if !errors.Is(err, ErrNoDocument) {
			t.Fatalf("expected ErrNoDocument, got %v", err)
		}
	})
}

// TestAnalyzeStep tests the agent dispatch step.
func TestAnalyzeStep(t *testing.T) {
	t.Parallel()

	t.Run("stores one result per dimension and usage", func(t *testing.T) {
		t.Parallel()

		client := &stubModel{
			response: `{"score": 80, "findings": ["Looks fine"], "summary": "Solid page."}`,
			usage:    model.Usage{Calls: 5, PromptTokens: 700, CompletionTokens: 200, TotalTokens: 900},
		}
		agents := agent.DefaultAgents(client, llm.NewHTTPFetcher(), agent.WithLogger(discardLogger()))
		dispatcher := agent.NewDispatcher(agents, agent.WithDispatchLogger(discardLogger()))

		step := NewAnalyzeStep(dispatcher,
			WithAnalyzeUsage(client),
			WithAnalyzeLogger(discardLogger()),
		)

		report := model.NewReport("https://example.com/")
		report.Snapshot = model.NewSnapshot("https://example.com/")

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Dimensions) != len(model.DimensionKeys) {
			t.Fatalf("expected %d dimensions, got %d", len(model.DimensionKeys), len(report.Dimensions))
		}
		for _, key := range model.DimensionKeys {
			if _, ok := report.Dimensions[key]; !ok {
				t.Errorf("expected result for dimension %q", key)
			}
		}
		if report.Usage.Calls != 5 {
			t.Errorf("expected usage to be copied, got %+v", report.Usage)
		}
	})

	t.Run("fails without snapshot", func(t *testing.T) {
		t.Parallel()

		client := &stubModel{response: "{}"}
		agents := agent.DefaultAgents(client, llm.NewHTTPFetcher(), agent.WithLogger(discardLogger()))
		dispatcher := agent.NewDispatcher(agents, agent.WithDispatchLogger(discardLogger()))
		step := NewAnalyzeStep(dispatcher, WithAnalyzeLogger(discardLogger()))

		err := step.Do(context.Background(), model.NewReport("https://example.com/"))
		if !errors.Is(err, ErrNoSnapshot) {
			t.Fatalf("expected ErrNoSnapshot, got %v", err)
		}
	})
}

// TestComposeStep tests the score composition step.
func TestComposeStep(t *testing.T) {
	t.Parallel()

	t.Run("composes overall score and grade", func(t *testing.T) {
		t.Parallel()

		report := model.NewReport("https://example.com/")
		report.Dimensions = dimensionResults(80)

		step := NewComposeStep(WithComposeLogger(discardLogger()))
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.Overall != 80.0 {
			t.Errorf("expected overall 80.0, got %v", report.Overall)
		}
		if report.Grade != model.GradeA {
			t.Errorf("expected grade A, got %q", report.Grade)
		}
	})

	t.Run("fails when a dimension is missing", func(t *testing.T) {
		t.Parallel()

		report := model.NewReport("https://example.com/")
		report.Dimensions = dimensionResults(80)
		delete(report.Dimensions, model.DimensionTrust)

		step := NewComposeStep(WithComposeLogger(discardLogger()))
		if err := step.Do(context.Background(), report); err == nil {
			t.Fatal("expected error for missing dimension")
		}
	})
}

// TestDefaultPipeline tests the fully wired analysis chain.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("wires the standard chain", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(&stubModel{}, []Option{WithLogger(discardLogger())})

		names := p.StepNames()
		want := []string{"fetch", "extract", "analyze", "compose"}
		if len(names) != len(want) {
			t.Fatalf("expected %d steps, got %v", len(want), names)
		}
		for i, name := range want {
			if names[i] != name {
				t.Errorf("expected step %d to be %q, got %q", i, name, names[i])
			}
		}
	})

	t.Run("analyzes a page end to end", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(testPage))
		}))
		defer srv.Close()

		client := &stubModel{
			response: `{"score": 80, "findings": ["Looks fine"], "summary": "Solid page."}`,
			usage:    model.Usage{Calls: 5, TotalTokens: 900},
		}

		var progressCalls int
		p := DefaultPipeline(client, []Option{WithLogger(discardLogger())},
			WithPipelineHTTPClient(srv.Client()),
			WithPipelineTimeout(5*time.Second),
			WithPipelineConcurrency(1),
			WithPipelineProgress(func(_ float64, _ model.AgentResult) {
				progressCalls++
			}),
		)

		report := model.NewReport(srv.URL)
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.Overall != 80.0 {
			t.Errorf("expected overall 80.0, got %v", report.Overall)
		}
		if report.Grade != model.GradeA {
			t.Errorf("expected grade A, got %q", report.Grade)
		}
		if len(report.Dimensions) != len(model.DimensionKeys) {
			t.Errorf("expected %d dimensions, got %d", len(model.DimensionKeys), len(report.Dimensions))
		}
		if progressCalls != len(model.DimensionKeys) {
			t.Errorf("expected %d progress callbacks, got %d", len(model.DimensionKeys), progressCalls)
		}
		if report.Usage.Calls != 5 {
			t.Errorf("expected usage from the client, got %+v", report.Usage)
		}
		if report.Snapshot == nil || report.Snapshot.Title != "Sample Page" {
			t.Error("expected extracted snapshot on the report")
		}
	})

	t.Run("reports fetch failures", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		}))
		defer srv.Close()

		p := DefaultPipeline(&stubModel{}, []Option{WithLogger(discardLogger())},
			WithPipelineHTTPClient(srv.Client()),
		)

		err := p.Execute(context.Background(), model.NewReport(srv.URL))
		if !errors.Is(err, fetch.ErrBadStatus) {
			t.Fatalf("expected ErrBadStatus, got %v", err)
		}
	})
}
