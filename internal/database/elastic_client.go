package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/locvowork/epms/internal/domain"
	"github.com/olivere/elastic/v7"
)

const employeeIndex = "employees"

// EmployeeDoc mirrors domain.Employee for ES storage.
type EmployeeDoc struct {
	EmployeeNumber string    `json:"employee_number"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Position       string    `json:"position"`
	Telephone      string    `json:"telephone"`
	Gender         string    `json:"gender"`
	HiredDate      time.Time `json:"hired_date"`
	DepartmentCode string    `json:"department_code,omitempty"`
}

func toEmployeeDoc(e domain.Employee) EmployeeDoc {
	doc := EmployeeDoc{
		EmployeeNumber: e.EmployeeNumber,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		Position:       e.Position,
		Telephone:      e.Telephone,
		Gender:         string(e.Gender),
		HiredDate:      e.HiredDate.Time,
	}
	if e.DepartmentCode != nil {
		doc.DepartmentCode = *e.DepartmentCode
	}
	return doc
}

func (d EmployeeDoc) toEmployee() domain.Employee {
	e := domain.Employee{
		EmployeeNumber: d.EmployeeNumber,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Position:       d.Position,
		Telephone:      d.Telephone,
		Gender:         domain.Gender(d.Gender),
		HiredDate:      domain.NewDate(d.HiredDate),
	}
	if d.DepartmentCode != "" {
		code := d.DepartmentCode
		e.DepartmentCode = &code
	}
	return e
}

// ElasticSearchClient wraps olivere/elastic client.
type ElasticSearchClient struct {
	client *elastic.Client
}

// NewElasticSearchClient creates a new client for Elasticsearch 7.x.
func NewElasticSearchClient(url string) (*ElasticSearchClient, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false), // Essential when using Docker or cloud
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &ElasticSearchClient{client: client}, nil
}

// IndexEmployee indexes an employee document using the employee number as ID.
func (es *ElasticSearchClient) IndexEmployee(ctx context.Context, e domain.Employee) error {
	_, err := es.client.Index().
		Index(employeeIndex).
		Id(e.EmployeeNumber).
		BodyJson(toEmployeeDoc(e)).
		Refresh("true").
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index employee %s: %w", e.EmployeeNumber, err)
	}
	return nil
}

// DeleteEmployee removes an employee document. A missing document is not an error.
func (es *ElasticSearchClient) DeleteEmployee(ctx context.Context, employeeNumber string) error {
	_, err := es.client.Delete().
		Index(employeeIndex).
		Id(employeeNumber).
		Refresh("true").
		Do(ctx)
	if err != nil && !elastic.IsNotFound(err) {
		return fmt.Errorf("failed to delete employee %s: %w", employeeNumber, err)
	}
	return nil
}

// SearchEmployeesByName performs a full-text match on first_name or last_name.
func (es *ElasticSearchClient) SearchEmployeesByName(ctx context.Context, name string) ([]domain.Employee, error) {
	query := elastic.NewMultiMatchQuery(name, "first_name", "last_name").Fuzziness("AUTO")

	searchResult, err := es.client.Search().
		Index(employeeIndex).
		Query(query).
		Size(100).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	employees := make([]domain.Employee, 0, len(searchResult.Hits.Hits))
	for _, item := range searchResult.Hits.Hits {
		var doc EmployeeDoc
		if err := json.Unmarshal(item.Source, &doc); err != nil {
			continue
		}
		employees = append(employees, doc.toEmployee())
	}

	return employees, nil
}

// BulkIndexEmployees indexes many employees in one request.
func (es *ElasticSearchClient) BulkIndexEmployees(ctx context.Context, employees []domain.Employee) error {
	bulkRequest := es.client.Bulk()

	for _, e := range employees {
		req := elastic.NewBulkIndexRequest().
			Index(employeeIndex).
			Id(e.EmployeeNumber).
			Doc(toEmployeeDoc(e))
		bulkRequest = bulkRequest.Add(req)
	}

	if bulkRequest.NumberOfActions() == 0 {
		return nil
	}

	bulkResponse, err := bulkRequest.Refresh("true").Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}

	if bulkResponse.Errors {
		for _, item := range bulkResponse.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("bulk item failed: %s", op.Error.Reason)
				}
			}
		}
	}

	return nil
}
