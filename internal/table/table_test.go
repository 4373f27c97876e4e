package table

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Method", ColumnMethod},
		{"  method ", ColumnMethod},
		{"Tools/Software", ColumnTools},
		{"Subfield/Domain", ColumnDomain},
		{"DATASET", ColumnDataset},
		{"Metrics", ColumnMetrics},
		{"Year", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonical(tt.in), "Canonical(%q)", tt.in)
	}
}

func TestFromJSON_FlattensNestedValues(t *testing.T) {
	t.Parallel()

	obj := gjson.Parse(`{
		"Method": "CNN",
		"Tools/Software": ["PyTorch", "MONAI"],
		"Dataset": null,
		"Metrics": 0.93,
		"Subfield/Domain": {"area": "neuro"},
		"Year": 2021
	}`)
	row := FromJSON(obj)

	require.NotNil(t, row.Method)
	assert.Equal(t, "CNN", *row.Method)
	require.NotNil(t, row.Tools)
	assert.Equal(t, "PyTorch, MONAI", *row.Tools)
	assert.Nil(t, row.Dataset)
	require.NotNil(t, row.Metrics)
	assert.Equal(t, "0.93", *row.Metrics)
	require.NotNil(t, row.Domain)
	assert.Equal(t, `{"area":"neuro"}`, *row.Domain)

	require.Len(t, row.Extra, 1)
	assert.Equal(t, "Year", row.Extra[0].Column)
	assert.Equal(t, "2021", *row.Extra[0].Value)
}

func TestRow_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Method: Str("SVM"), Tools: Str("scikit-learn"), Dataset: Str("ADNI"), Metrics: Str("accuracy"), Domain: Str("neuroimaging")},
		{Method: Str("U-Net"), Extra: []Cell{{Column: "Year", Value: Str("2020")}, {Column: "Notes", Value: nil}}},
		{},
	}

	data, err := json.Marshal(rows)
	require.NoError(t, err)

	var got []Row
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, rows, got)
}

func TestRow_MarshalJSON_CanonicalOrder(t *testing.T) {
	t.Parallel()

	row := Row{Domain: Str("oncology"), Method: Str("ResNet"), Extra: []Cell{{Column: "Zeta", Value: Str("z")}}}
	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Method":"ResNet","Tools":null,"Dataset":null,"Metrics":null,"Domain":"oncology","Zeta":"z"}`, string(data))
	assert.Equal(t, `{"Method":"ResNet","Tools":null,"Dataset":null,"Metrics":null,"Domain":"oncology","Zeta":"z"}`, string(data))
}

func TestRow_UnmarshalJSON_RejectsNonObject(t *testing.T) {
	t.Parallel()

	var r Row
	assert.Error(t, json.Unmarshal([]byte(`"just a string"`), &r))
	assert.Error(t, r.UnmarshalJSON([]byte(`{broken`)))
}

func TestRow_SetReplacesExtra(t *testing.T) {
	t.Parallel()

	var r Row
	r.Set("Year", Str("2019"))
	r.Set("Year", Str("2020"))
	require.Len(t, r.Extra, 1)
	v, ok := r.Get("Year")
	assert.True(t, ok)
	assert.Equal(t, "2020", v)

	_, ok = r.Get("Missing")
	assert.False(t, ok)
}

func TestRow_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, Row{}.IsEmpty())
	assert.True(t, Row{Extra: []Cell{{Column: "x"}}}.IsEmpty())
	assert.False(t, Row{Metrics: Str("")}.IsEmpty())
}

func TestColumns_IncludesExtrasInFirstSeenOrder(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Extra: []Cell{{Column: "Year", Value: Str("2020")}}},
		{Extra: []Cell{{Column: "Venue", Value: Str("MICCAI")}, {Column: "Year", Value: Str("2021")}}},
	}
	assert.Equal(t, []string{"Method", "Tools", "Dataset", "Metrics", "Domain", "Year", "Venue"}, Columns(rows))
	assert.Equal(t, Fields, Columns(nil))
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Method: Str("CNN"), Tools: Str("TensorFlow, Keras"), Dataset: Str("ADNI"), Domain: Str("neuro")},
		{Method: Str("SVM"), Extra: []Cell{{Column: "Year", Value: Str("2018")}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	want := "Method,Tools,Dataset,Metrics,Domain,Year\n" +
		"CNN,\"TensorFlow, Keras\",ADNI,,neuro,\n" +
		"SVM,,,,,2018\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_EmptyRowsWritesHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Method,Tools,Dataset,Metrics,Domain\n", buf.String())
}

func TestCounts(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Method: Str("CNN")},
		{Method: Str("SVM")},
		{Method: Str("CNN")},
		{Method: Str("")},
		{},
		{Method: Str("Random Forest")},
	}
	got := Counts(rows, ColumnMethod)
	assert.Equal(t, []Count{
		{Value: "CNN", N: 2},
		{Value: "Random Forest", N: 1},
		{Value: "SVM", N: 1},
	}, got)
	assert.Empty(t, Counts(rows, ColumnTools))
}
