package mcpserver

// TableFormat describes the YAML verse table document so that LLM clients
// can propose additions in a shape the loader accepts.
const TableFormat = `# Verse Table Format

The verse clock maps clock times to Bible verses. The table is a single YAML
mapping; the order of keys is significant.

## Structure

` + "```" + `yaml
"03:16":                                   # REQUIRED – 24h clock time HH:MM, quoted
  text: "John 3:16 - For God so loved..."  # REQUIRED – "<Reference> - <Body>"
  categories: [love, faith]                # OPTIONAL – lowercase category names
` + "```" + `

## Rules

1. **Keys** match ` + "`" + `^([01][0-9]|2[0-3]):[0-5][0-9]$` + "`" + ` and must be unique.
2. **Text** is the reference, a space, a hyphen, a space, and the verse body.
   Everything before the first ` + "`" + ` - ` + "`" + ` is the reference.
3. **Categories** in use: encouragement, faith, love, peace, wisdom.
4. **Order matters.** Ties between equally close times go to the entry that
   appears first; category matching and the verse of the day walk the table
   in document order. Append new entries rather than reordering.
5. The table must contain at least one entry.
`
