package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/locvowork/epms/internal/domain"
)

const reportKind = "PayrollReport"

// reportEntity is the Datastore shape of a ReportSnapshot. Rows are kept as
// an unindexed JSON blob.
type reportEntity struct {
	Month       string    `datastore:"Month"`
	Year        int       `datastore:"Year"`
	GeneratedBy string    `datastore:"GeneratedBy"`
	GeneratedAt time.Time `datastore:"GeneratedAt"`
	TotalNet    string    `datastore:"TotalNet,noindex"`
	Rows        []byte    `datastore:"Rows,noindex"`
}

// DatastoreClient wraps the cloud datastore client
type DatastoreClient struct {
	client *datastore.Client
}

// NewDatastoreClient connects to Datastore for projectID.
func NewDatastoreClient(ctx context.Context, projectID string) (*DatastoreClient, error) {
	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &DatastoreClient{client: client}, nil
}

// Close releases the underlying client.
func (dc *DatastoreClient) Close() error {
	if dc == nil || dc.client == nil {
		return nil
	}
	return dc.client.Close()
}

func reportKey(month string, year int) *datastore.Key {
	return datastore.NameKey(reportKind, fmt.Sprintf("%d-%s", year, month), nil)
}

// SaveReport stores a snapshot, replacing any earlier one for the same month and year.
func (dc *DatastoreClient) SaveReport(ctx context.Context, snap *domain.ReportSnapshot) error {
	if dc == nil || dc.client == nil {
		return fmt.Errorf("datastore client is nil")
	}

	rows, err := json.Marshal(snap.Rows)
	if err != nil {
		return fmt.Errorf("failed to encode report rows: %w", err)
	}
	ent := &reportEntity{
		Month:       snap.Month,
		Year:        snap.Year,
		GeneratedBy: snap.GeneratedBy,
		GeneratedAt: snap.GeneratedAt,
		TotalNet:    snap.TotalNet,
		Rows:        rows,
	}

	if _, err := dc.client.Put(ctx, reportKey(snap.Month, snap.Year), ent); err != nil {
		return fmt.Errorf("failed to save report %d-%s: %w", snap.Year, snap.Month, err)
	}
	return nil
}

// GetReport retrieves the snapshot for month and year.
func (dc *DatastoreClient) GetReport(ctx context.Context, month string, year int) (*domain.ReportSnapshot, error) {
	if dc == nil || dc.client == nil {
		return nil, fmt.Errorf("datastore client is nil")
	}

	var ent reportEntity
	if err := dc.client.Get(ctx, reportKey(month, year), &ent); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, fmt.Errorf("report %d-%s: %w", year, month, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get report %d-%s: %w", year, month, err)
	}
	return ent.toSnapshot()
}

// ListReports returns every archived snapshot, newest first.
func (dc *DatastoreClient) ListReports(ctx context.Context) ([]domain.ReportSnapshot, error) {
	if dc == nil || dc.client == nil {
		return nil, fmt.Errorf("datastore client is nil")
	}

	var ents []reportEntity
	q := datastore.NewQuery(reportKind).Order("-GeneratedAt")
	if _, err := dc.client.GetAll(ctx, q, &ents); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	snaps := make([]domain.ReportSnapshot, 0, len(ents))
	for i := range ents {
		s, err := ents[i].toSnapshot()
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *s)
	}
	return snaps, nil
}

func (e *reportEntity) toSnapshot() (*domain.ReportSnapshot, error) {
	snap := &domain.ReportSnapshot{
		Month:       e.Month,
		Year:        e.Year,
		GeneratedBy: e.GeneratedBy,
		GeneratedAt: e.GeneratedAt,
		TotalNet:    e.TotalNet,
	}
	if len(e.Rows) > 0 {
		if err := json.Unmarshal(e.Rows, &snap.Rows); err != nil {
			return nil, fmt.Errorf("failed to decode report rows: %w", err)
		}
	}
	return snap, nil
}
