package pipeline

import (
	"github.com/go-gota/gota/series"
	"github.com/rs/zerolog"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/dataprep"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/stats"
)

// Passenger table columns.
const (
	PassengerID = "PassengerId"
	Survived    = "Survived"
	Pclass      = "Pclass"
	Name        = "Name"
	Sex         = "Sex"
	Age         = "Age"
	SibSp       = "SibSp"
	Parch       = "Parch"
	Ticket      = "Ticket"
	Fare        = "Fare"
	Cabin       = "Cabin"
	Embarked    = "Embarked"
)

// Target is the label column.
const Target = Survived

// ColumnTypes pins the text columns so a sample where one of them is fully
// missing, or looks numeric, still loads as text. Age and Fare are always
// floats, even when every present value is whole.
func ColumnTypes() map[string]series.Type {
	return map[string]series.Type{
		Age:      series.Float,
		Fare:     series.Float,
		Name:     series.String,
		Sex:      series.String,
		Ticket:   series.String,
		Cabin:    series.String,
		Embarked: series.String,
	}
}

// Schema describes the structure of a dataset.
type Schema struct {
	FeatureNames []string
	Types        []string // gota series types: "float", "int", "string", "bool"
	Missing      []int
}

// Describe reports the columns of d with their types and missing counts.
func Describe(d data.Dataset) Schema {
	var s Schema
	df := d.DataFrame()
	for _, name := range d.Names() {
		n, _ := d.MissingCount(name)
		s.FeatureNames = append(s.FeatureNames, name)
		s.Types = append(s.Types, string(df.Col(name).Type()))
		s.Missing = append(s.Missing, n)
	}
	return s
}

// Baseline keeps only the numeric columns that need no encoding.
func Baseline() *Pipeline {
	return NewPipeline(dataprep.NewPruner(Name, Age, Sex, Ticket, Cabin, Embarked))
}

// Cleaned prunes free text, fills Age, encodes Cabin, Sex and Embarked,
// derives family features and standardizes Age and Fare.
func Cleaned(policy stats.DegeneratePolicy, log zerolog.Logger) *Pipeline {
	return NewPipeline(
		dataprep.NewPruner(Name, Ticket),
		dataprep.NewImputer(Age, dataprep.Median),
		dataprep.NewPresenceFlag(Cabin),
		dataprep.NewLabelMap(Sex, map[string]float64{"male": 0, "female": 1}),
		dataprep.NewOneHot(Embarked),
		dataprep.NewFamilySize(SibSp, Parch),
		dataprep.IsAlone{},
		stats.NewStandardScaler([]string{Age, Fare}, stats.WithPolicy(policy), stats.WithScalerLogger(log)),
	).WithLogger(log)
}
