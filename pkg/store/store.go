// Package store provides persistence for computed flow reports.
//
// A report is a computed layout snapshot for a project: the screen order,
// the re-expressed journey series, and enough metadata to list and compare
// runs over time. The Store interface has two implementations:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for the hosted API
//
// # Usage
//
// Create a store:
//
//	// Development
//	st := store.NewMemoryStore()
//
//	// Production
//	st, err := store.NewMongoStore(ctx, store.MongoConfig{
//	    URI:      "mongodb://localhost:27017",
//	    Database: "journeyflow",
//	})
//
// Save and retrieve reports:
//
//	report := store.NewReport("shop-app", len(journeys), result)
//	if err := st.Save(ctx, report); err != nil {
//	    return err
//	}
//
//	latest, err := st.Latest(ctx, "shop-app")
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/uxlens/journeyflow/pkg/flow"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a report does not exist.
	ErrNotFound = errors.New("report not found")

	// ErrNoReports is returned when a project has no stored reports.
	ErrNoReports = errors.New("no reports for project")
)

// Report is a stored layout computation.
type Report struct {
	ID        string      `json:"id" bson:"_id"`
	Project   string      `json:"project" bson:"project"`
	Journeys  int         `json:"journeys" bson:"journeys"`
	CreatedAt time.Time   `json:"createdAt" bson:"created_at"`
	Flow      flow.Result `json:"flow" bson:"flow"`
}

// NewReport creates a report for a computed layout with a fresh ID.
func NewReport(project string, journeyCount int, result flow.Result) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Project:   project,
		Journeys:  journeyCount,
		CreatedAt: time.Now().UTC(),
		Flow:      result,
	}
}

// Store is the interface for report storage backends.
type Store interface {
	// Save persists a report. Saving an existing ID overwrites it.
	Save(ctx context.Context, report *Report) error

	// Get retrieves a report by ID.
	// Returns ErrNotFound if the report doesn't exist.
	Get(ctx context.Context, id string) (*Report, error)

	// Latest retrieves the most recently created report for a project.
	// Returns ErrNoReports if the project has none.
	Latest(ctx context.Context, project string) (*Report, error)

	// List returns up to limit reports for a project, newest first.
	// A non-positive limit applies a backend default.
	List(ctx context.Context, project string, limit int) ([]*Report, error)

	// Delete removes a report. Deleting a missing report returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}

// DefaultListLimit bounds List results when the caller passes no limit.
const DefaultListLimit = 20
