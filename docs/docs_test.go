package docs

import (
	"strings"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerInfoRegistered(t *testing.T) {
	if SwaggerInfo.Title != "BTC Dashboard API" {
		t.Fatalf("unexpected title %q", SwaggerInfo.Title)
	}

	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("read registered doc: %v", err)
	}
	for _, want := range []string{`"title": "BTC Dashboard API"`, `"/api/chart"`, `"/api/ticker/stream"`, `"ApiKeyAuth"`} {
		if !strings.Contains(doc, want) {
			t.Errorf("swagger doc missing %s", want)
		}
	}
}
