package config

// settingsSchema constrains the shape and enumerations of the merged settings
// tree. Numeric bounds and cross-field rules are checked in validateConfig.
const settingsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "logging": {
      "type": "object",
      "properties": {
        "level":  {"type": "string", "enum": ["debug", "info", "warn", "error"]},
        "format": {"type": "string", "enum": ["json", "console"]}
      }
    },
    "content_generation": {
      "type": "object",
      "properties": {
        "resolution": {"type": "string", "pattern": "^[0-9]+x[0-9]+$"},
        "selection_strategy": {"type": "string", "enum": ["random", "rotation", "fresh"]},
        "genres": {
          "type": "object",
          "additionalProperties": {
            "type": "object",
            "properties": {
              "sub_genres": {"type": "array", "items": {"type": "string"}},
              "styles":     {"type": "array", "items": {"type": "string"}},
              "themes":     {"type": "array", "items": {"type": "string"}},
              "palettes":   {"type": "array", "items": {"type": "string"}}
            }
          }
        },
        "posts":   {"$ref": "#/definitions/kind"},
        "stories": {"$ref": "#/definitions/kind"}
      }
    },
    "scheduling": {
      "type": "object",
      "properties": {
        "timezone": {"type": "string"},
        "daily_runs": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["time"],
            "properties": {
              "time": {"type": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"}
            }
          }
        }
      }
    },
    "captions": {
      "type": "object",
      "properties": {
        "hashtag_style":   {"type": "string", "enum": ["none", "minimal", "comprehensive"]},
        "custom_hashtags": {"type": "array", "items": {"type": "string"}}
      }
    },
    "error_handling": {
      "type": "object",
      "properties": {
        "notifications": {
          "type": "object",
          "properties": {
            "channel": {"type": "string", "enum": ["ses", "sns"]}
          }
        }
      }
    },
    "social_media": {
      "type": "object",
      "properties": {
        "platform":   {"type": "string", "enum": ["instagram", "telegram"]},
        "post_types": {"type": "array", "items": {"type": "string", "enum": ["feed", "story", "post", "posts", "stories"]}},
        "media_hosting": {
          "type": "object",
          "properties": {
            "provider": {"type": "string", "enum": ["none", "s3"]}
          }
        }
      }
    },
    "ai_generation": {
      "type": "object",
      "properties": {
        "provider":         {"type": "string", "enum": ["openai", "openai-compatible", "mock"]},
        "image_quality":    {"type": "string", "enum": ["standard", "hd"]},
        "creativity_level": {"type": "string", "enum": ["low", "medium", "high"]}
      }
    },
    "counter": {
      "type": "object",
      "properties": {
        "backend": {"type": "string", "enum": ["memory", "redis"]}
      }
    }
  },
  "definitions": {
    "kind": {
      "type": "object",
      "properties": {
        "genres":     {"type": "array", "items": {"type": "string"}},
        "resolution": {"type": "string"}
      }
    }
  }
}`
