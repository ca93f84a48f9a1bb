// Package prompt holds the fixed instructions shared by every extraction provider.
package prompt

import "fmt"

// SystemInstruction tells the model which categories to extract and the exact reply shape.
const SystemInstruction = `You are an AI assistant that helps students organize their thoughts into structured data.
Analyze the student's brain dump and extract:
1. Tasks with priorities (high/medium/low) and due dates
2. Events and recurring schedules
3. Projects with steps
4. Notes and study materials
5. Subjects mentioned

Return ONLY valid JSON in this exact format:
{
  "todos": [{"id": "uuid", "text": "string", "due": "string or null", "priority": "high|medium|low", "completed": false, "subject": "string or null"}],
  "projects": [{"id": "uuid", "name": "string", "steps": [{"id": "uuid", "text": "string", "completed": false}]}],
  "events": [{"id": "uuid", "name": "string", "time": "string", "recurring": true|false}],
  "notes": [{"id": "uuid", "content": "string", "subject": "string or null"}],
  "subjects": ["string"]
}

Guidelines:
- Extract specific due dates when mentioned (e.g., "May 30", "Friday", "next week")
- Assign priorities based on urgency and importance
- Identify recurring events (classes, meetings)
- Group related tasks into projects when appropriate
- Categorize by academic subjects when possible`

// BuildPrompt embeds the raw brain dump verbatim into the user instruction.
func BuildPrompt(text string) string {
	return fmt.Sprintf("Please analyze this student brain dump and organize it into structured data: \"%s\"", text)
}
