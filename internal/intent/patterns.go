package intent

// Pattern is one weighted signal in a family.
type Pattern struct {
	Name   string
	Expr   string
	Weight float64
}

// ConsultationPatterns signal that the user is talking about their writing or
// their day rather than asking for a change.
var ConsultationPatterns = []Pattern{
	{Name: "temporal", Expr: `(?i)\b(today|yesterday|tonight|last (night|week|month)|this (morning|afternoon|evening|week)|lately|recently)\b`, Weight: 1},
	{Name: "personal_state", Expr: `(?i)\bI('m| am| was| feel| felt)\s+(so\s+|really\s+|very\s+)?(tired|stuck|excited|worried|confused|anxious|happy|frustrated|overwhelmed|nervous)\b`, Weight: 1.5},
	{Name: "reflective", Expr: `(?i)\b(I('ve| have) been (thinking|wondering|reflecting)|looking back|reflecting on|it occurs to me)\b`, Weight: 1.5},
	{Name: "opinion_observation", Expr: `(?i)\b(I think|I feel like|I believe|in my opinion|it seems( like)?|I noticed|I guess)\b`, Weight: 2},
	{Name: "speculation", Expr: `(?i)\b(what if|I wonder( if| whether)?|maybe (I|we) should|could it be|perhaps|suppose)\b`, Weight: 2},
	{Name: "conversational", Expr: `(?i)^\s*(hi|hello|hey|thanks|thank you|good (morning|evening)|ok(ay)?|cool)\b`, Weight: 0.5},
	{Name: "experience_sharing", Expr: `(?i)\b(I (went|saw|met|had|tried|visited|read|watched|learned)|when I was|the other day)\b`, Weight: 2},
}

// EditingPatterns signal a request to change the document.
var EditingPatterns = []Pattern{
	{Name: "command_verb", Expr: `(?i)^\s*(add|insert|write|create|edit|rewrite|rephrase|delete|remove|fix|correct|change|update|replace|make|expand|shorten|condense|summarize|append|translate|format|tag)\b`, Weight: 3},
	{Name: "document_reference", Expr: `(?i)\b(this|the|my|that) (document|doc|section|paragraph|sentence|text|heading|note|draft|chapter|intro|introduction|conclusion|selection)\b`, Weight: 2},
	{Name: "quality_assessment", Expr: `(?i)\b(needs (work|improvement|editing|polish)|is (unclear|confusing|awkward|wordy|too long|too short)|could be (better|clearer|shorter)|reads poorly)\b`, Weight: 1.5},
	{Name: "document_targeting", Expr: `(?i)\b(at the (end|beginning|top|bottom)|after the|before the|under the|in the .+ section)\b`, Weight: 2},
	{Name: "content_type", Expr: `(?i)\b(bullet points?|numbered list|table|summary|outline|examples?|title|tags|frontmatter)\b`, Weight: 1},
	{Name: "imperative_request", Expr: `(?i)\b(please|can you|could you|would you|I need you to|I want you to)\b.*\b(add|write|edit|fix|rewrite|delete|remove|make|change|improve|expand|shorten|correct|update)\b`, Weight: 3},
}

var (
	strongConsultation = map[string]bool{
		"speculation":         true,
		"opinion_observation": true,
		"experience_sharing":  true,
	}
	strongEditing = map[string]bool{
		"command_verb":       true,
		"imperative_request": true,
	}
)
