package repository

// TxRepositories agrupa los repositorios atados a una misma transacción.
// Las operaciones que afectan el saldo de una empresa usan estos repos para que
// la entidad y la fila de Company se confirmen (o descarten) juntas.
type TxRepositories struct {
	Companies CompanyRepository
	Movements LedgerMovementRepository
	Guides    GuideRepository
	Requests  PurchaseRequestRepository
	Payments  PaymentRepository
}
