package repositories

// RepositoryProvider aggregates the concrete repositories handed to the service layer.
// Plain composition: each sub-component is a typed reference, dispatched by explicit
// method calls.
type RepositoryProvider struct {
	AccountRepo   AccountRepositoryFacade
	JournalRepo   JournalRepositoryFacade
	PaymentRepo   PaymentRepositoryFacade
	ReportingRepo ReportingRepository
}
