package report

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/inspector"
)

//go:embed template.html
var template string

// dataTag is the empty placeholder in the template that receives the JSON.
const dataTag = `<script id="__PEEL_DATA__" type="application/json"></script>`

// Build returns the report page with data embedded in it. data is JSON;
// any "</script>" inside it is escaped so it cannot end the tag early.
func Build(data []byte) string {
	safe := strings.ReplaceAll(string(data), "</script>", `<\/script>`)
	filled := `<script id="__PEEL_DATA__" type="application/json">` + safe + `</script>`
	return strings.Replace(template, dataTag, filled, 1)
}

// BuildImage renders the report for an inspected image.
func BuildImage(info *inspector.ImageInfo) (string, error) {
	data, err := json.Marshal(info)
	if err != nil {
		return "", errors.Wrap(errors.ExitGeneralError, "encode report data", err)
	}
	return Build(data), nil
}
