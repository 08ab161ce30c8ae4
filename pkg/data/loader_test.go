package data

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const passengersCSV = `PassengerId,Survived,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Cabin,Embarked
1,0,3,"Braund, Mr. Owen Harris",male,22,1,0,A/5 21171,7.25,,S
2,1,1,"Cumings, Mrs. John Bradley (Florence Briggs Thayer)",female,38,1,0,PC 17599,71.2833,C85,C
3,1,3,"Heikkinen, Miss. Laina",female,,0,0,STON/O2. 3101282,7.925,,S
`

func TestReadCSV(t *testing.T) {
	d, err := ReadCSV(strings.NewReader(passengersCSV), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())
	assert.Len(t, d.Names(), 12)

	names, _, err := d.Strings("test", "Name")
	require.NoError(t, err)
	assert.Equal(t, "Braund, Mr. Owen Harris", names[0])

	n, err := d.MissingCount("Cabin")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLoaderHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/titanic.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(passengersCSV))
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))
	d, err := l.Load(context.Background(), Source{Location: srv.URL + "/titanic.csv"})
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())

	_, err = l.Load(context.Background(), Source{Location: srv.URL + "/missing.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLoaderLocalFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "titanic.csv")
	require.NoError(t, os.WriteFile(p, []byte(passengersCSV), 0o644))

	d, err := NewLoader().Load(context.Background(), Source{Location: p})
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())

	_, err = NewLoader().Load(context.Background(), Source{Location: filepath.Join(t.TempDir(), "nope.csv")})
	assert.Error(t, err)
}

func TestLoaderWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"Survived", "Age", "Embarked"},
		{1, 22, "S"},
		{0, nil, "C"},
		{1, 30},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	p := filepath.Join(t.TempDir(), "passengers.xlsx")
	require.NoError(t, f.SaveAs(p))

	d, err := NewLoader().Load(context.Background(), Source{Location: p})
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())

	n, err := d.MissingCount("Age")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = d.MissingCount("Embarked")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIsWorkbook(t *testing.T) {
	assert.True(t, isWorkbook("data/PASSENGERS.XLSX"))
	assert.True(t, isWorkbook("https://example.com/a/b.xlsx?raw=1"))
	assert.False(t, isWorkbook("https://example.com/a/b.csv"))
}
