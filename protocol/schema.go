package protocol

import "github.com/santhosh-tekuri/jsonschema/v5"

const commandSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "to", "command"],
  "properties": {
    "type": {"const": "command"},
    "id": {"type": "string"},
    "to": {"type": "string", "minLength": 1},
    "command": {
      "type": "object",
      "required": ["commandName", "data"],
      "properties": {
        "commandName": {"type": "string", "minLength": 1},
        "data": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

var commandSchema = jsonschema.MustCompileString("command.schema.json", commandSchemaJSON)
