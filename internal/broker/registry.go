package broker

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/mtlprog/stmtimport/internal/domain"
)

// Registry is the closed set of extractors in registration order. Order breaks
// detection ties, so specific brokers come first and the generic extractor last.
type Registry struct {
	extractors []Extractor
}

// NewRegistry builds the registry of every supported format.
func NewRegistry() Registry {
	return Registry{extractors: []Extractor{
		NewIBKR(),
		NewFidelity(),
		NewSchwab(),
		NewTDAmeritrade(),
		NewVanguard(),
		NewETrade(),
		NewTrading212(),
		NewDEGIRO(),
		NewXTB(),
		NewRobinhood(),
		NewRevolut(),
		NewGeneric(),
	}}
}

// Lookup returns the extractor for id.
func (r Registry) Lookup(id domain.BrokerID) (Extractor, error) {
	e, ok := lo.Find(r.extractors, func(e Extractor) bool { return e.ID() == id })
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedBroker, id)
	}
	return e, nil
}

// All returns the extractors in registration order.
func (r Registry) All() []Extractor {
	return append([]Extractor(nil), r.extractors...)
}

// IDs returns the broker ids in registration order.
func (r Registry) IDs() []domain.BrokerID {
	return lo.Map(r.extractors, func(e Extractor, _ int) domain.BrokerID { return e.ID() })
}

// Infos returns the display metadata of every registered extractor.
func (r Registry) Infos() []domain.BrokerInfo {
	return lo.FilterMap(r.extractors, func(e Extractor, _ int) (domain.BrokerInfo, bool) {
		return domain.BrokerInfoByID(e.ID())
	})
}
