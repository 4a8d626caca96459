package test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//JSONBytesEqual unmarshalls two jsons into objects and uses ObjectsEqual
func JSONBytesEqual(t *testing.T, expected, actual []byte, msgAndArgs ...interface{}) {
	var expectedObj, actualObj interface{}
	if err := json.Unmarshal(expected, &expectedObj); err != nil {
		assert.Fail(t, "Error unmarshalling expected object: "+string(expected)+" err:"+err.Error(), msgAndArgs...)
	}
	if err := json.Unmarshal(actual, &actualObj); err != nil {
		assert.Fail(t, "Error unmarshalling actual object: "+string(actual)+" err:"+err.Error(), msgAndArgs...)
	}
	ObjectsEqual(t, expectedObj, actualObj, msgAndArgs...)
}

//ObjectsEqual compares objects with go-cmp and prints the diff
func ObjectsEqual(t *testing.T, expected, actual interface{}, msgAndArgs ...interface{}) {
	if diff := cmp.Diff(expected, actual); diff != "" {
		assert.Fail(t, fmt.Sprintf("Objects aren't equal (-expected +actual):\n%s", diff), msgAndArgs...)
	}
}

//JSONEqual marshals actual into JSON and compares it with the expected JSON document
func JSONEqual(t *testing.T, expected string, actual interface{}, msgAndArgs ...interface{}) {
	actualBytes, err := json.Marshal(actual)
	require.NoError(t, err)
	JSONBytesEqual(t, []byte(expected), actualBytes, msgAndArgs...)
}

//LoadFixture reads testdata/<name> and unmarshals it into a map
func LoadFixture(t *testing.T, name string) map[string]interface{} {
	payload, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err, "reading fixture "+name)

	obj := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(payload, &obj), "unmarshalling fixture "+name)
	return obj
}
