package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docfill/form"
)

type fakePrompter struct {
	answers map[string]string
	asked   []string
}

func (f *fakePrompter) Input(_ context.Context, field form.Field, current string) (string, error) {
	f.asked = append(f.asked, field.Name)
	if a, ok := f.answers[field.Name]; ok {
		return a, nil
	}
	return current, nil
}

func TestAsk(t *testing.T) {
	fake := &fakePrompter{answers: map[string]string{"B": "typed"}}
	old := prompter
	prompter = fake
	t.Cleanup(func() { prompter = old })

	schema := form.New([]string{"A", "B"})
	values := map[string]string{"A": "known"}

	require.NoError(t, ask(context.Background(), schema, values))

	assert.Equal(t, []string{"A", "B"}, fake.asked)
	assert.Equal(t, map[string]string{"A": "known", "B": "typed"}, values)
}

func TestParseSet(t *testing.T) {
	values, err := parseSet([]string{"a=1", "b=x=y", "a=2", "empty="})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "2", "b": "x=y", "empty": ""}, values)

	_, err = parseSet([]string{"=v"})
	assert.Error(t, err)
}

func TestReadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Имя: Анна\nВозраст_1: 30\n"), 0o644))

	values, err := readValues(path)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Имя": "Анна", "Возраст_1": "30"}, values)
}

func TestReadValueSets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"a": "1"}, {"a": "2"}]`), 0o644))

	sets, err := readValueSets(path)

	require.NoError(t, err)
	assert.Len(t, sets, 2)
	assert.Equal(t, "2", sets[1]["a"])
}

func TestFieldValidator(t *testing.T) {
	v := fieldValidator(form.Field{Name: "a", Required: true, MaxLength: 3})

	assert.Error(t, v(""))
	assert.NoError(t, v("abc"))
	assert.Error(t, v("abcd"))
}
