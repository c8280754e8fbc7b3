package ports

// Ingestor defines the interface for email ingestion surfaces that feed
// messages into the pipeline
type Ingestor interface {
	// Start starts the ingestion service
	Start() error

	// Stop stops the ingestion service
	Stop() error
}
