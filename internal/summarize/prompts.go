package summarize

// summaryInstructions is the base system instruction for entry summaries.
const summaryInstructions = `You summarize personal journal entries.

Write a single short paragraph capturing the key events, feelings, and
decisions in the entry. Use the writer's voice ("I went", not "the writer
went"). Do not add commentary, advice, or information that is not in the
entry. Output only the summary text.`

// stricterSuffix is appended to the instructions after a summary came back
// over the length ceiling. It carries the explicit word budget.
const stricterSuffix = `

Your previous summary was too long. The summary MUST be under %d words.
Cut secondary detail and keep only the most important points.`

// metadataInstructions asks the model for structured frontmatter fields.
const metadataInstructions = `You extract metadata from personal journal entries.

Given an entry, return the writer's overall mood as a single lowercase word,
up to five keywords, up to three broad topics, and up to five short tags.
Base everything strictly on the entry text.`
