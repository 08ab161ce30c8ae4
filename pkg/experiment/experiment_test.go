package experiment

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/config"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
)

// passengersCSV draws n passengers where women and first class mostly survive.
func passengersCSV(n int, seed int64) string {
	rng := rand.New(rand.NewSource(seed))
	var b strings.Builder
	b.WriteString("PassengerId,Survived,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Cabin,Embarked\n")
	ports := []string{"S", "C", "Q"}
	for i := range n {
		class := 1 + rng.Intn(3)
		female := rng.Intn(2) == 0
		sex := "male"
		if female {
			sex = "female"
		}
		age := ""
		if rng.Intn(5) != 0 {
			age = fmt.Sprintf("%.1f", 1+rng.Float64()*70)
		}
		cabin := ""
		if class == 1 || rng.Intn(4) == 0 {
			cabin = fmt.Sprintf("C%d", rng.Intn(120))
		}
		port := ports[i%3]
		if i%29 == 7 {
			port = ""
		}
		score := -0.5 + 0.8*float64(2-class) + rng.NormFloat64()*0.8
		if female {
			score += 2
		}
		survived := 0
		if score > 0 {
			survived = 1
		}
		fare := 80/float64(class) + rng.Float64()*20
		fmt.Fprintf(&b, "%d,%d,%d,\"Passenger, No. %d\",%s,%s,%d,%d,T%d,%.2f,%s,%s\n",
			i+1, survived, class, i, sex, age, rng.Intn(3), rng.Intn(3), 1000+i, fare, cabin, port)
	}
	return b.String()
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "passengers.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newRunner(t *testing.T, cfg *config.Config, out *bytes.Buffer) *Runner {
	t.Helper()
	r, err := NewRunner(cfg, out, zerolog.Nop())
	require.NoError(t, err)
	return r
}

func TestRunWritesEveryMetric(t *testing.T) {
	cfg := config.Default()
	cfg.Source = writeCSV(t, passengersCSV(200, 1))
	var out bytes.Buffer
	require.NoError(t, newRunner(t, cfg, &out).Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 9)
	prefixes := []string{
		"Baseline Accuracy: ", "Final Accuracy: ", "Precision: ", "Recall: ", "F1 Score: ",
		"test_accuracy: ", "test_precision: ", "test_recall: ", "test_f1: ",
	}
	for i, p := range prefixes {
		assert.True(t, strings.HasPrefix(lines[i], p), "line %d: %q", i, lines[i])
	}
	assert.Regexp(t, `^test_accuracy: \d\.\d\d \(\+/- \d\.\d\d\)$`, lines[5])
}

func TestBaselineAndCleanedResults(t *testing.T) {
	cfg := config.Default()
	cfg.Source = writeCSV(t, passengersCSV(300, 2))
	var out bytes.Buffer
	r := newRunner(t, cfg, &out)
	d, err := r.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 300, d.Len())

	base, err := r.Baseline(d)
	require.NoError(t, err)
	assert.Equal(t, []string{"PassengerId", "Pclass", "SibSp", "Parch", "Fare"}, base.Features)
	assert.True(t, base.Accuracy >= 0 && base.Accuracy <= 1)

	cleaned, err := r.Cleaned(d)
	require.NoError(t, err)
	assert.Contains(t, cleaned.Features, "Embarked_Q")
	assert.Contains(t, cleaned.Features, "Embarked_S")
	assert.Contains(t, cleaned.Features, "FamilySize")
	assert.Contains(t, cleaned.Features, "IsAlone")
	assert.NotContains(t, cleaned.Features, "Name")
	assert.Greater(t, cleaned.Scores.Accuracy, base.Accuracy, "sex is the strongest signal")
	assert.Len(t, cleaned.CV.Folds, 5)

	testRows := 0
	for _, f := range cleaned.CV.Folds {
		testRows += f.TestSize
	}
	assert.Equal(t, 60, testRows, "folds cover the held-out 20%")
}

func TestCleanedPolicies(t *testing.T) {
	source := writeCSV(t, passengersCSV(240, 3))
	cases := map[string]func(*config.Config){
		"fit on train":   func(c *config.Config) { c.FitOnTrain = true },
		"cv over all":    func(c *config.Config) { c.CVScope = config.ScopeAll },
		"no refit":       func(c *config.Config) { c.RefitPerFold = false },
		"shuffled folds": func(c *config.Config) { c.CVShuffle = true; c.CVStratified = false },
		"gd solver":      func(c *config.Config) { c.Solver = "gd"; c.MaxIterations = 5000 },
		"train impute":   func(c *config.Config) { c.BaselineImpute = "train" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Source = source
			mutate(cfg)
			var out bytes.Buffer
			require.NoError(t, newRunner(t, cfg, &out).Run(context.Background()))
			assert.Contains(t, out.String(), "test_f1: ")
		})
	}
}

func TestCVScopeAllUsesEveryRow(t *testing.T) {
	cfg := config.Default()
	cfg.Source = writeCSV(t, passengersCSV(150, 4))
	cfg.CVScope = config.ScopeAll
	var out bytes.Buffer
	r := newRunner(t, cfg, &out)
	d, err := r.Load(context.Background())
	require.NoError(t, err)
	res, err := r.Cleaned(d)
	require.NoError(t, err)
	total := 0
	for _, f := range res.CV.Folds {
		total += f.TestSize
	}
	assert.Equal(t, 150, total)
}

func TestRunFromHTTPWithPlot(t *testing.T) {
	body := passengersCSV(120, 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Source = srv.URL + "/titanic.csv"
	cfg.Plot = filepath.Join(t.TempDir(), "folds.png")
	var out bytes.Buffer
	r, err := NewRunner(cfg, &out, zerolog.Nop(), data.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background(), CleanedPath))

	assert.NotContains(t, out.String(), "Baseline Accuracy")
	assert.Contains(t, out.String(), "Final Accuracy: ")
	_, err = os.Stat(cfg.Plot)
	assert.NoError(t, err)
}

func TestRunErrors(t *testing.T) {
	cfg := config.Default()
	cfg.TestFraction = 0
	_, err := NewRunner(cfg, &bytes.Buffer{}, zerolog.Nop())
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Source = filepath.Join(t.TempDir(), "absent.csv")
	assert.Error(t, newRunner(t, cfg, &bytes.Buffer{}).Run(context.Background()))

	cfg = config.Default()
	cfg.Source = writeCSV(t, "PassengerId,Fare\n1,7.25\n2,8.05\n")
	var se *data.SchemaError
	assert.ErrorAs(t, newRunner(t, cfg, &bytes.Buffer{}).Run(context.Background()), &se)

	cfg = config.Default()
	cfg.Source = writeCSV(t, passengersCSV(50, 6))
	assert.Error(t, newRunner(t, cfg, &bytes.Buffer{}).Run(context.Background(), Path("forest")))
}

func TestPrepare(t *testing.T) {
	cfg := config.Default()
	cfg.Source = writeCSV(t, passengersCSV(60, 7))
	r := newRunner(t, cfg, &bytes.Buffer{})

	cleaned, err := r.Prepare(context.Background(), CleanedPath)
	require.NoError(t, err)
	assert.Equal(t, 60, cleaned.Len())
	n, err := cleaned.MissingCount("Age")
	require.NoError(t, err)
	assert.Zero(t, n)

	base, err := r.Prepare(context.Background(), BaselinePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"PassengerId", "Survived", "Pclass", "SibSp", "Parch", "Fare"}, base.Names())

	_, err = r.Prepare(context.Background(), Path("raw"))
	assert.Error(t, err)
}

func TestDefaultConfigConvergesOnFullSizeTable(t *testing.T) {
	cfg := config.Default()
	cfg.Source = writeCSV(t, passengersCSV(891, 8))
	var logs bytes.Buffer
	r, err := NewRunner(cfg, &bytes.Buffer{}, zerolog.New(&logs).Level(zerolog.DebugLevel))
	require.NoError(t, err)
	d, err := r.Load(context.Background())
	require.NoError(t, err)

	_, err = r.Baseline(d)
	require.NoError(t, err)
	res, err := r.Cleaned(d)
	require.NoError(t, err)
	assert.True(t, res.Converged)

	out := logs.String()
	assert.Contains(t, out, "baseline gaps filled")
	assert.Contains(t, out, `"train_fill":{`)
	assert.Contains(t, out, `"iterations":`)
	assert.Equal(t, 5, strings.Count(out, "cross-validation fold scored"))
}
