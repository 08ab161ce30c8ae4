package dataprep

import (
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
)

// DropColumns removes the named columns. Every name must exist; when one is
// absent a SchemaError is returned and nothing is removed, so pruning the
// same column twice fails on the second call.
func DropColumns(d data.Dataset, names ...string) (data.Dataset, error) {
	return d.Drop("prune", names...)
}

// Pruner is the pipeline step form of DropColumns.
type Pruner struct {
	Columns []string
}

func NewPruner(columns ...string) *Pruner { return &Pruner{Columns: columns} }

func (p *Pruner) Name() string { return "prune" }

func (p *Pruner) Fit(data.Dataset) error { return nil }

func (p *Pruner) Transform(d data.Dataset) (data.Dataset, error) {
	return DropColumns(d, p.Columns...)
}
