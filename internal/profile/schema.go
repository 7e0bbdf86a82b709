package profile

// profileSchema is the JSON schema every publication profile must satisfy.
// Thresholds are bounded loosely; the point is to catch typos (strings where
// numbers belong, unknown keys) before a multi-hour extraction run.
const profileSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["pdf"],
  "additionalProperties": false,
  "properties": {
    "pdf": {"type": "string", "minLength": 1},
    "pages": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "first": {"type": "integer", "minimum": 1},
        "last": {"type": "integer", "minimum": 0}
      }
    },
    "skip_pages": {
      "type": "array",
      "items": {"type": "string", "pattern": "^[0-9]+(-[0-9]+)?$"}
    },
    "layout": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "header_zone": {"type": "number", "minimum": 0, "maximum": 0.5},
        "row_tolerance": {"type": "number", "exclusiveMinimum": 0},
        "word_gap": {"type": "number", "exclusiveMinimum": 0}
      }
    },
    "heuristic": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "min_height": {"type": "number", "exclusiveMinimum": 0},
        "min_distance": {"type": "number", "exclusiveMinimum": 0},
        "blank_distance": {"type": "number", "exclusiveMinimum": 0}
      }
    },
    "rules": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "replacements": {"type": "string"},
        "headers": {"type": "string"},
        "non_headers": {"type": "string"}
      }
    },
    "tabulate": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "name_replacements": {"type": "string"}
      }
    }
  }
}`
