package protocol

import "github.com/santhosh-tekuri/jsonschema/v5"

// commandSchemaJSON constrains CMD frames before any field is trusted.
// Steps may be negative (producers can target boundary steps), so only the
// types and the priority enum are pinned here.
const commandSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "command"],
  "properties": {
    "type": {"const": "CMD"},
    "protocol_version": {"type": "string"},
    "command": {
      "type": "object",
      "required": ["type", "priority"],
      "properties": {
        "type": {"type": "string", "minLength": 1},
        "priority": {"enum": ["SYSTEM", "PLAYER", "AUTOMATION"]},
        "timestamp": {"type": "integer"},
        "step": {"type": "integer"},
        "payload": {},
        "request_id": {"type": "string"}
      }
    }
  }
}`

var commandSchema = jsonschema.MustCompileString("command.json", commandSchemaJSON)
