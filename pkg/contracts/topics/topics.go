package topics

const (
	// Ledger
	LedgerEvents = "ledger_events"

	// DLQ do audit worker
	LedgerEventsDLQ = "ledger_events_dlq"
)
