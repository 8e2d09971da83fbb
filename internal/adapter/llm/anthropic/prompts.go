// Package anthropic file: internal/adapter/llm/anthropic/prompts.go
package anthropic

import (
	"DBTalk/internal/core/domain"
	"fmt"
)

const postgresSystemPrompt = `You are an expert SQL query generator and database assistant. Your role is to:
1. Convert natural language questions into valid SQL queries
2. Generate ONLY PostgreSQL-compatible SQL
3. Use proper JOIN syntax and table aliases
4. NEVER use destructive operations (DELETE, DROP, TRUNCATE, ALTER, UPDATE, INSERT)
5. Always prioritize data safety and query efficiency
6. Handle edge cases and NULL values appropriately
7. Respond with ONLY valid JSON, without markdown and without text outside the JSON
8. Always wrap ALL table names and column names in double quotes (")
9. Never output unquoted identifiers. Preserve exact casing from the schema. Example: "Post", "User", "authorId"

You must always respond in valid JSON format with "query" and "explanation" fields.`

const mongoSystemPrompt = `You are an expert MongoDB aggregation pipeline generator and database assistant. Your role is to:
1. Convert natural language questions into a single read-only aggregation pipeline
2. Choose exactly one collection to run the pipeline on
3. NEVER use $out, $merge, $where, $function or $accumulator
4. Every pipeline stage must be an object with exactly one operator key
5. Prefer $match early and add a $limit when the question does not ask for everything
6. Respond with ONLY valid JSON, without markdown and without text outside the JSON

You must always respond in valid JSON format with "collection", "query" (the pipeline array) and "explanation" fields.`

func systemPrompt(source domain.Source) (string, error) {
	switch source {
	case domain.SourcePostgres:
		return postgresSystemPrompt, nil
	case domain.SourceMongo:
		return mongoSystemPrompt, nil
	default:
		return "", fmt.Errorf("没有适用于 '%s' 的提示词", source)
	}
}

func userPrompt(source domain.Source, schemaDescription, question string) string {
	if source == domain.SourceMongo {
		return fmt.Sprintf(`Database Schema:
%s

User Question: %s

Generate a MongoDB aggregation pipeline to answer this question. Return ONLY a JSON object with this structure:
{
  "collection": "collectionName",
  "query": [{"$match": {}}],
  "explanation": "Brief explanation of what the pipeline does"
}`, schemaDescription, question)
	}
	return fmt.Sprintf(`Database Schema:
%s

User Question: %s

Generate a PostgreSQL query to answer this question. Return ONLY a JSON object with this structure:
{
  "query": "SELECT ... FROM ... WHERE ...",
  "explanation": "Brief explanation of what the query does"
}`, schemaDescription, question)
}
