package model

// Broker tags which brokerage rendered the current page. The set of known
// brokers comes from configuration; these constants cover the default table.
type Broker string

const (
	BrokerFidelity  Broker = "fidelity"
	BrokerSchwab    Broker = "schwab"
	BrokerVanguard  Broker = "vanguard"
	BrokerRobinhood Broker = "robinhood"
	BrokerUnknown   Broker = "unknown"
)
