package openai

import (
	"fmt"
	"time"
)

const intentResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "filters": {
      "type": "object",
      "properties": {
        "created_after": {"type": ["string", "null"], "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
        "kind": {"type": ["string", "null"], "enum": ["text", "image", "pdf", "audio", null]},
        "tags": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["created_after", "kind", "tags"],
      "additionalProperties": false
    },
    "semantic_query": {"type": "string"},
    "lexical_synonyms": {"type": "array", "items": {"type": "string"}, "maxItems": 3},
    "intent": {"type": "string", "enum": ["metadata_filter", "semantic_search"]}
  },
  "required": ["filters", "semantic_query", "lexical_synonyms", "intent"],
  "additionalProperties": false
}`

const intentPromptTemplate = `You are a query parser for a personal content vault.
Extract the core semantic search terms and any explicit metadata filters from the user query.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Intent rules:
- "metadata_filter": explicit request for item kinds (text/image/pdf/audio), dates, or specific tags.
- "semantic_search": general conceptual search without metadata constraints.

Filter rules:
- created_after: date in YYYY-MM-DD (today is %s). Parse "today", "yesterday", and similar relative phrases.
- kind: ONLY "text", "image", "pdf", or "audio" (e.g. "photos", "pictures" -> "image"; "notes", "documents" -> "text").
- tags: array of strings only when the user explicitly asks for tags/labels (e.g. "tagged work" -> ["work"]).

Semantic query rule:
- The actual searchable topic/concept with the filter language stripped.
  If the query is "images of kittens", semantic_query is "kittens" and kind is "image".
  If the query is purely a filter ("files from today"), semantic_query is "".

Lexical synonyms rule:
- Provide up to 3 specific synonyms or related terms to widen text search recall
  (e.g. "kittens" -> ["cats", "felines"]). Do NOT repeat the semantic_query words.

Example:
Input: "photos of kittens from yesterday"
Output:
{
  "filters": {"created_after": "%s", "kind": "image", "tags": []},
  "semantic_query": "kittens",
  "lexical_synonyms": ["cats", "felines"],
  "intent": "metadata_filter"
}

Example:
Input: "how does garbage collection work"
Output:
{
  "filters": {"created_after": null, "kind": null, "tags": []},
  "semantic_query": "garbage collection",
  "lexical_synonyms": ["memory management", "gc"],
  "intent": "semantic_search"
}`

// buildIntentPrompt creates the classification system prompt anchored to
// the given date so relative phrases resolve deterministically in tests.
func buildIntentPrompt(today time.Time) string {
	return fmt.Sprintf(intentPromptTemplate,
		intentResponseSchema,
		today.Format(time.DateOnly),
		today.AddDate(0, 0, -1).Format(time.DateOnly))
}

const enrichPromptTemplate = `Analyze the document provided by the user and return a JSON object with exactly these keys:
- "title": a concise, descriptive title (max 10 words)
- "tags": an array of 3-7 relevant tags (lowercase, single words or short phrases)
- "summary": a 2-3 sentence summary of the document content

Output ONLY valid JSON. Do not include any preamble, explanation, greeting, or markdown
formatting. Start your response directly with the opening brace { and end with the closing brace }.`

const mergePromptTemplate = `You are an assistant that consolidates short notes into a single coherent document.
The user provides several short notes that are semantically related, separated by "---".

Combine the information from these notes into a single, well-structured text. Remove redundancies.
Generate a short, descriptive title for the consolidated text.

Output ONLY a valid JSON object with exactly these keys:
- "title": the short descriptive title
- "body": the consolidated text

Do not include any preamble, explanation, or markdown formatting. Start your response directly
with the opening brace { and end with the closing brace }.`
