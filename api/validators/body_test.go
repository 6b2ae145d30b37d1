package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/quickkart/storefront-gateway/pkg/errors"
)

type samplePayload struct {
	Name string `json:"name" validate:"required"`
	Qty  int    `json:"qty" validate:"min=1"`
}

func decode(t *testing.T, body string) (samplePayload, error) {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	var out samplePayload
	err := DecodeJSONBody(req, &out)
	return out, err
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	out, err := decode(t, `{"name":"widget","qty":2}`)
	require.NoError(t, err)
	require.Equal(t, "widget", out.Name)
	require.Equal(t, 2, out.Qty)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := decode(t, `{"name":"widget","qty":1,"extra":true}`)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestDecodeJSONBodyRejectsEmptyBody(t *testing.T) {
	t.Parallel()

	_, err := decode(t, "")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	t.Parallel()

	_, err := decode(t, `{"qty":0}`)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().([]string)
	require.True(t, ok, "expected detail list, got %#v", typed.Details())
	require.Contains(t, details, "name is required")
	require.Contains(t, details, "qty must be at least 1")
}

func TestDecodeJSONBodyRejectsTrailingJSON(t *testing.T) {
	t.Parallel()

	_, err := decode(t, `{"name":"a","qty":1}{"name":"b"}`)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}
