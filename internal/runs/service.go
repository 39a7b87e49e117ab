package runs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/scenariq/scenariq/internal/store"
	"github.com/scenariq/scenariq/pkg/decision"
	"github.com/scenariq/scenariq/pkg/engine"
	"github.com/scenariq/scenariq/pkg/results"
)

// Service runs stored cases through the evaluation engine.
type Service struct {
	store       *store.Service
	storage     StorageClient
	parallelism int
}

// NewService creates a new run Service. parallelism bounds the number of
// (option, scenario) pairs evaluated concurrently per run.
func NewService(st *store.Service, storage StorageClient, parallelism int) *Service {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Service{store: st, storage: storage, parallelism: parallelism}
}

// SubmitCase validates a case document, persists its row, and stores the
// blob. The case is rejected before anything is written if it does not
// validate.
func (s *Service) SubmitCase(ctx context.Context, spec json.RawMessage) (*store.CaseRow, error) {
	var c decision.Case
	if err := json.Unmarshal(spec, &c); err != nil {
		return nil, fmt.Errorf("decode case: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate case: %w", err)
	}
	if _, err := c.EvaluationOrder(); err != nil {
		return nil, fmt.Errorf("order case: %w", err)
	}

	row, err := s.store.UpsertCase(ctx, c.Name, c.Description, spec)
	if err != nil {
		return nil, err
	}
	if err := s.storage.PutCase(ctx, row.ID, spec); err != nil {
		return nil, fmt.Errorf("store case blob: %w", err)
	}
	return row, nil
}

// StartRun queues a run for a stored case and processes it. Processing
// errors are recorded on the run row; StartRun itself only fails when the
// run cannot be created.
func (s *Service) StartRun(ctx context.Context, caseID string) (*store.RunRow, error) {
	run, err := s.store.CreateRun(ctx, caseID)
	if err != nil {
		return nil, err
	}

	if err := s.Process(ctx, run); err != nil {
		log.Printf("run %s failed: %v", run.ID, err)
		reason := err.Error()
		if failErr := s.store.FailRun(ctx, run.ID, reason); failErr != nil {
			log.Printf("failed to mark run %s failed: %v", run.ID, failErr)
		}
	}

	return s.store.GetRun(ctx, run.ID)
}

// Process executes one queued run: load the case blob, evaluate every
// pair, and persist the result document.
func (s *Service) Process(ctx context.Context, run *store.RunRow) error {
	if err := s.store.MarkRunning(ctx, run.ID); err != nil {
		return err
	}

	spec, err := s.storage.GetCase(ctx, run.CaseID)
	if err != nil {
		return fmt.Errorf("load case blob: %w", err)
	}

	var c decision.Case
	if err := json.Unmarshal(spec, &c); err != nil {
		return fmt.Errorf("decode case: %w", err)
	}

	ev, err := engine.New(&c)
	if err != nil {
		return fmt.Errorf("prepare case: %w", err)
	}

	pairResults, failures := ev.Run(ctx, s.parallelism)
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := results.NewSet(&c, pairResults, failures).Document()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	blobID := uuid.NewString()
	if err := s.storage.PutResults(ctx, run.CaseID, blobID, data); err != nil {
		return fmt.Errorf("store results blob: %w", err)
	}
	storageRef := fmt.Sprintf("%s/results/%s.json", run.CaseID, blobID)

	if err := s.store.CompleteRun(ctx, run.ID, data, storageRef); err != nil {
		return err
	}

	log.Printf("run %s completed: %d results, %d failed pairs", run.ID, len(doc.Results), len(doc.Failures))
	return nil
}

// Results loads the result document of a completed run, preferring the
// inline copy and falling back to the blob.
func (s *Service) Results(ctx context.Context, runID string) (*results.Document, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != store.StatusCompleted {
		return nil, fmt.Errorf("run %s is %s, not completed", runID, run.Status)
	}

	data := []byte(run.Results)
	if len(data) == 0 && run.StorageRef != nil {
		data, err = s.storage.GetResults(ctx, run.CaseID, blobIDFromRef(*run.StorageRef))
		if err != nil {
			return nil, fmt.Errorf("load results blob: %w", err)
		}
	}

	var doc results.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return &doc, nil
}

// blobIDFromRef extracts the blob ID from a "<case>/results/<id>.json" ref.
func blobIDFromRef(ref string) string {
	return strings.TrimSuffix(path.Base(ref), ".json")
}
