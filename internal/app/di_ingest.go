package app

import (
	"context"
	"fmt"
	"sync"

	"gocloud.dev/blob"

	"github.com/allisson/eventpost/internal/ingest/parser"
	"github.com/allisson/eventpost/internal/ingest/pipeline"
	"github.com/allisson/eventpost/internal/ingest/queue"
	"github.com/allisson/eventpost/internal/ingest/repository"
	"github.com/allisson/eventpost/internal/ingest/service"
	"github.com/allisson/eventpost/internal/ingest/storage"
	"github.com/allisson/eventpost/internal/ingest/usecase"
)

// ingestComponents holds the lazily initialized ingestion dependencies.
type ingestComponents struct {
	queue            *queue.PubSubQueue
	bucket           *blob.Bucket
	blobCoordinator  *storage.BlobCoordinator
	payloadGuard     *service.PayloadGuard
	parserRegistry   *parser.Registry
	parserAdapter    *service.EventParserAdapter
	projectRepo      usecase.ProjectRepository
	organizationRepo usecase.OrganizationRepository
	eventRepo        pipeline.EventRepository
	pipeline         usecase.Pipeline
	quotaEnforcer    *usecase.QuotaEnforcer
	retryEnqueuer    *usecase.RetryEnqueuer
	useCase          usecase.EventPostUseCase
	worker           *usecase.Worker

	queueInit            sync.Once
	bucketInit           sync.Once
	blobCoordinatorInit  sync.Once
	payloadGuardInit     sync.Once
	parserRegistryInit   sync.Once
	parserAdapterInit    sync.Once
	projectRepoInit      sync.Once
	organizationRepoInit sync.Once
	eventRepoInit        sync.Once
	pipelineInit         sync.Once
	quotaEnforcerInit    sync.Once
	retryEnqueuerInit    sync.Once
	useCaseInit          sync.Once
	workerInit           sync.Once
}

// Queue returns the queue transport instance.
func (c *Container) Queue(ctx context.Context) (*queue.PubSubQueue, error) {
	var err error
	c.ingest.queueInit.Do(func() {
		c.ingest.queue, err = queue.Open(ctx, c.config.QueueURL, c.config.QueueTopicURL)
		if err != nil {
			c.initErrors["queue"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["queue"]; exists {
		return nil, storedErr
	}
	return c.ingest.queue, nil
}

// Bucket returns the blob bucket holding raw post bodies.
func (c *Container) Bucket(ctx context.Context) (*blob.Bucket, error) {
	var err error
	c.ingest.bucketInit.Do(func() {
		c.ingest.bucket, err = storage.OpenBucket(ctx, c.config.BlobBucketURL)
		if err != nil {
			c.initErrors["bucket"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["bucket"]; exists {
		return nil, storedErr
	}
	return c.ingest.bucket, nil
}

// BlobCoordinator returns the blob coordinator instance.
func (c *Container) BlobCoordinator(ctx context.Context) (*storage.BlobCoordinator, error) {
	var err error
	c.ingest.blobCoordinatorInit.Do(func() {
		c.ingest.blobCoordinator, err = c.initBlobCoordinator(ctx)
		if err != nil {
			c.initErrors["blobCoordinator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["blobCoordinator"]; exists {
		return nil, storedErr
	}
	return c.ingest.blobCoordinator, nil
}

// PayloadGuard returns the payload guard instance.
func (c *Container) PayloadGuard() *service.PayloadGuard {
	c.ingest.payloadGuardInit.Do(func() {
		c.ingest.payloadGuard = service.NewPayloadGuard(
			c.config.MaxUncompressedPostBytes,
			c.config.CompressedSizeMultiplier,
		)
	})
	return c.ingest.payloadGuard
}

// ParserRegistry returns the event parser registry. Additional wire formats
// register here before the worker starts.
func (c *Container) ParserRegistry() *parser.Registry {
	c.ingest.parserRegistryInit.Do(func() {
		c.ingest.parserRegistry = parser.NewRegistry()
	})
	return c.ingest.parserRegistry
}

// EventParserAdapter returns the event parser adapter instance.
func (c *Container) EventParserAdapter() (*service.EventParserAdapter, error) {
	var err error
	c.ingest.parserAdapterInit.Do(func() {
		c.ingest.parserAdapter, err = c.initEventParserAdapter()
		if err != nil {
			c.initErrors["parserAdapter"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["parserAdapter"]; exists {
		return nil, storedErr
	}
	return c.ingest.parserAdapter, nil
}

// ProjectRepository returns the project repository instance.
func (c *Container) ProjectRepository() (usecase.ProjectRepository, error) {
	var err error
	c.ingest.projectRepoInit.Do(func() {
		c.ingest.projectRepo, err = c.initProjectRepository()
		if err != nil {
			c.initErrors["projectRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["projectRepo"]; exists {
		return nil, storedErr
	}
	return c.ingest.projectRepo, nil
}

// OrganizationRepository returns the organization repository instance.
func (c *Container) OrganizationRepository() (usecase.OrganizationRepository, error) {
	var err error
	c.ingest.organizationRepoInit.Do(func() {
		c.ingest.organizationRepo, err = c.initOrganizationRepository()
		if err != nil {
			c.initErrors["organizationRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["organizationRepo"]; exists {
		return nil, storedErr
	}
	return c.ingest.organizationRepo, nil
}

// EventRepository returns the event repository instance.
func (c *Container) EventRepository() (pipeline.EventRepository, error) {
	var err error
	c.ingest.eventRepoInit.Do(func() {
		c.ingest.eventRepo, err = c.initEventRepository()
		if err != nil {
			c.initErrors["eventRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventRepo"]; exists {
		return nil, storedErr
	}
	return c.ingest.eventRepo, nil
}

// Pipeline returns the event pipeline instance.
func (c *Container) Pipeline() (usecase.Pipeline, error) {
	var err error
	c.ingest.pipelineInit.Do(func() {
		c.ingest.pipeline, err = c.initPipeline()
		if err != nil {
			c.initErrors["pipeline"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pipeline"]; exists {
		return nil, storedErr
	}
	return c.ingest.pipeline, nil
}

// QuotaEnforcer returns the quota enforcer instance.
func (c *Container) QuotaEnforcer() (*usecase.QuotaEnforcer, error) {
	var err error
	c.ingest.quotaEnforcerInit.Do(func() {
		c.ingest.quotaEnforcer, err = c.initQuotaEnforcer()
		if err != nil {
			c.initErrors["quotaEnforcer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["quotaEnforcer"]; exists {
		return nil, storedErr
	}
	return c.ingest.quotaEnforcer, nil
}

// RetryEnqueuer returns the retry enqueuer instance.
func (c *Container) RetryEnqueuer(ctx context.Context) (*usecase.RetryEnqueuer, error) {
	var err error
	c.ingest.retryEnqueuerInit.Do(func() {
		c.ingest.retryEnqueuer, err = c.initRetryEnqueuer(ctx)
		if err != nil {
			c.initErrors["retryEnqueuer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["retryEnqueuer"]; exists {
		return nil, storedErr
	}
	return c.ingest.retryEnqueuer, nil
}

// EventPostUseCase returns the event post use case instance.
func (c *Container) EventPostUseCase(ctx context.Context) (usecase.EventPostUseCase, error) {
	var err error
	c.ingest.useCaseInit.Do(func() {
		c.ingest.useCase, err = c.initEventPostUseCase(ctx)
		if err != nil {
			c.initErrors["eventPostUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventPostUseCase"]; exists {
		return nil, storedErr
	}
	return c.ingest.useCase, nil
}

// Worker returns the queue worker pool instance.
func (c *Container) Worker(ctx context.Context) (*usecase.Worker, error) {
	var err error
	c.ingest.workerInit.Do(func() {
		c.ingest.worker, err = c.initWorker(ctx)
		if err != nil {
			c.initErrors["worker"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["worker"]; exists {
		return nil, storedErr
	}
	return c.ingest.worker, nil
}

// initBlobCoordinator creates the blob coordinator using the bucket.
func (c *Container) initBlobCoordinator(ctx context.Context) (*storage.BlobCoordinator, error) {
	bucket, err := c.Bucket(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket for blob coordinator: %w", err)
	}
	return storage.NewBlobCoordinator(bucket, c.Logger()), nil
}

// initEventParserAdapter creates the event parser adapter with its dependencies.
func (c *Container) initEventParserAdapter() (*service.EventParserAdapter, error) {
	ingestMetrics, err := c.IngestMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics for event parser adapter: %w", err)
	}

	return service.NewEventParserAdapter(
		c.ParserRegistry(),
		ingestMetrics,
		c.Logger(),
		c.config.InternalProjectID,
	), nil
}

// initProjectRepository creates the project repository instance.
func (c *Container) initProjectRepository() (usecase.ProjectRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for project repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return repository.NewMySQLProjectRepository(db), nil
	case "postgres":
		return repository.NewPostgreSQLProjectRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initOrganizationRepository creates the organization repository instance.
func (c *Container) initOrganizationRepository() (usecase.OrganizationRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for organization repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return repository.NewMySQLOrganizationRepository(db), nil
	case "postgres":
		return repository.NewPostgreSQLOrganizationRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEventRepository creates the event repository instance.
func (c *Container) initEventRepository() (pipeline.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for event repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return repository.NewMySQLEventRepository(db), nil
	case "postgres":
		return repository.NewPostgreSQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initPipeline creates the default pipeline with its stage chain.
func (c *Container) initPipeline() (usecase.Pipeline, error) {
	projectRepo, err := c.ProjectRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get project repository for pipeline: %w", err)
	}

	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for pipeline: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for pipeline: %w", err)
	}

	stages := []pipeline.Stage{
		pipeline.NewIdentityStage(),
		pipeline.NewPersistenceStage(eventRepo, txManager),
	}

	return pipeline.NewDefaultPipeline(projectRepo, stages, c.Logger()), nil
}

// initQuotaEnforcer creates the quota enforcer with its dependencies.
func (c *Container) initQuotaEnforcer() (*usecase.QuotaEnforcer, error) {
	projectRepo, err := c.ProjectRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get project repository for quota enforcer: %w", err)
	}

	organizationRepo, err := c.OrganizationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get organization repository for quota enforcer: %w", err)
	}

	return usecase.NewQuotaEnforcer(projectRepo, organizationRepo, c.Logger()), nil
}

// initRetryEnqueuer creates the retry enqueuer with its dependencies.
func (c *Container) initRetryEnqueuer(ctx context.Context) (*usecase.RetryEnqueuer, error) {
	q, err := c.Queue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue for retry enqueuer: %w", err)
	}

	blobCoordinator, err := c.BlobCoordinator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get blob coordinator for retry enqueuer: %w", err)
	}

	return usecase.NewRetryEnqueuer(
		q,
		blobCoordinator,
		c.config.RetryCompressionThresholdBytes,
		c.Logger(),
	), nil
}

// initEventPostUseCase creates the event post use case with all its dependencies.
func (c *Container) initEventPostUseCase(ctx context.Context) (usecase.EventPostUseCase, error) {
	q, err := c.Queue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue for event post use case: %w", err)
	}

	blobCoordinator, err := c.BlobCoordinator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get blob coordinator for event post use case: %w", err)
	}

	parserAdapter, err := c.EventParserAdapter()
	if err != nil {
		return nil, fmt.Errorf("failed to get event parser adapter for event post use case: %w", err)
	}

	quotaEnforcer, err := c.QuotaEnforcer()
	if err != nil {
		return nil, fmt.Errorf("failed to get quota enforcer for event post use case: %w", err)
	}

	eventPipeline, err := c.Pipeline()
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline for event post use case: %w", err)
	}

	retryEnqueuer, err := c.RetryEnqueuer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get retry enqueuer for event post use case: %w", err)
	}

	ingestMetrics, err := c.IngestMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics for event post use case: %w", err)
	}

	useCase := usecase.NewEventPostUseCase(
		q,
		blobCoordinator,
		c.PayloadGuard(),
		parserAdapter,
		quotaEnforcer,
		eventPipeline,
		retryEnqueuer,
		ingestMetrics,
		c.Logger(),
	)

	return usecase.NewEventPostUseCaseWithMetrics(useCase, ingestMetrics), nil
}

// initWorker creates the worker pool with all its dependencies.
func (c *Container) initWorker(ctx context.Context) (*usecase.Worker, error) {
	q, err := c.Queue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue for worker: %w", err)
	}

	useCase, err := c.EventPostUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get event post use case for worker: %w", err)
	}

	return usecase.NewWorker(
		q,
		useCase,
		c.config.WorkerCount,
		c.config.WorkerPollRatePerSec,
		c.config.WorkerPollBurst,
		c.Logger(),
	), nil
}
