// Package mocks provides mock implementations for testing the event-post
// use case and worker.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/eventpost/internal/ingest/domain"
)

// MockQueueTransport is a mock implementation of QueueTransport for testing.
type MockQueueTransport struct {
	mock.Mock
}

// Dequeue mocks the Dequeue method of QueueTransport.
func (m *MockQueueTransport) Dequeue(ctx context.Context) (*domain.QueueEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueEntry), args.Error(1)
}

// Complete mocks the Complete method of QueueTransport.
func (m *MockQueueTransport) Complete(ctx context.Context, entry *domain.QueueEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// Abandon mocks the Abandon method of QueueTransport.
func (m *MockQueueTransport) Abandon(ctx context.Context, entry *domain.QueueEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// Enqueue mocks the Enqueue method of QueueTransport.
func (m *MockQueueTransport) Enqueue(ctx context.Context, info *domain.EventPostInfo) error {
	args := m.Called(ctx, info)
	return args.Error(0)
}

// MockBlobCoordinator is a mock implementation of BlobCoordinator for testing.
type MockBlobCoordinator struct {
	mock.Mock
}

// LoadAndActivate mocks the LoadAndActivate method of BlobCoordinator.
func (m *MockBlobCoordinator) LoadAndActivate(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Release mocks the Release method of BlobCoordinator.
func (m *MockBlobCoordinator) Release(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// Finalize mocks the Finalize method of BlobCoordinator.
func (m *MockBlobCoordinator) Finalize(
	ctx context.Context,
	path, projectID string,
	createdAt time.Time,
	shouldArchive bool,
) error {
	args := m.Called(ctx, path, projectID, createdAt, shouldArchive)
	return args.Error(0)
}

// Store mocks the Store method of BlobCoordinator.
func (m *MockBlobCoordinator) Store(ctx context.Context, path string, data []byte) error {
	args := m.Called(ctx, path, data)
	return args.Error(0)
}

// MockPayloadGuard is a mock implementation of PayloadGuard for testing.
type MockPayloadGuard struct {
	mock.Mock
}

// Unpack mocks the Unpack method of PayloadGuard.
func (m *MockPayloadGuard) Unpack(data []byte, contentEncoding string) ([]byte, error) {
	args := m.Called(data, contentEncoding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockEventParserAdapter is a mock implementation of EventParserAdapter for testing.
type MockEventParserAdapter struct {
	mock.Mock
}

// ParseEvents mocks the ParseEvents method of EventParserAdapter.
func (m *MockEventParserAdapter) ParseEvents(
	ctx context.Context,
	info *domain.EventPostInfo,
	payload []byte,
	createdUtc time.Time,
) []*domain.ParsedEvent {
	args := m.Called(ctx, info, payload, createdUtc)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.ParsedEvent)
}

// MockPipeline is a mock implementation of Pipeline for testing.
type MockPipeline struct {
	mock.Mock
}

// Run mocks the Run method of Pipeline.
func (m *MockPipeline) Run(
	ctx context.Context,
	post *domain.EventPostInfo,
	events []*domain.ParsedEvent,
) ([]*domain.PipelineOutcome, error) {
	args := m.Called(ctx, post, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PipelineOutcome), args.Error(1)
}

// MockQuotaTrimmer is a mock implementation of QuotaTrimmer for testing.
type MockQuotaTrimmer struct {
	mock.Mock
}

// Trim mocks the Trim method of QuotaTrimmer.
func (m *MockQuotaTrimmer) Trim(
	ctx context.Context,
	info *domain.EventPostInfo,
	events []*domain.ParsedEvent,
) ([]*domain.ParsedEvent, error) {
	args := m.Called(ctx, info, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ParsedEvent), args.Error(1)
}

// MockRetryPoster is a mock implementation of RetryPoster for testing.
type MockRetryPoster struct {
	mock.Mock
}

// EnqueueEvents mocks the EnqueueEvents method of RetryPoster.
func (m *MockRetryPoster) EnqueueEvents(
	ctx context.Context,
	source *domain.EventPostInfo,
	events []*domain.ParsedEvent,
) (int, error) {
	args := m.Called(ctx, source, events)
	return args.Int(0), args.Error(1)
}

// MockOrganizationRepository is a mock implementation of OrganizationRepository for testing.
type MockOrganizationRepository struct {
	mock.Mock
}

// Get mocks the Get method of OrganizationRepository.
func (m *MockOrganizationRepository) Get(
	ctx context.Context,
	organizationID string,
) (*domain.Organization, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

// IncrementUsage mocks the IncrementUsage method of OrganizationRepository.
func (m *MockOrganizationRepository) IncrementUsage(
	ctx context.Context,
	organizationID string,
	count int,
	applyHourlyLimit bool,
) error {
	args := m.Called(ctx, organizationID, count, applyHourlyLimit)
	return args.Error(0)
}

// MockEventPostUseCase is a mock implementation of EventPostUseCase for testing.
type MockEventPostUseCase struct {
	mock.Mock
}

// Process mocks the Process method of EventPostUseCase.
func (m *MockEventPostUseCase) Process(
	ctx context.Context,
	entry *domain.QueueEntry,
) (domain.JobDisposition, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(domain.JobDisposition), args.Error(1)
}

// MockProjectRepository is a mock implementation of ProjectRepository for testing.
type MockProjectRepository struct {
	mock.Mock
}

// GetByID mocks the GetByID method of ProjectRepository.
func (m *MockProjectRepository) GetByID(
	ctx context.Context,
	projectID string,
) (*domain.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}
