package schema

import _ "embed"

// ConfigV1Schema contains the JSON schema for sockscope.yaml.
//
//go:embed config.v1.json
var ConfigV1Schema []byte

// ReportV1Schema contains the JSON schema for scanner output.
//
//go:embed report.v1.json
var ReportV1Schema []byte
