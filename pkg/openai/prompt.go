package openai

// GradingPrompt is the fixed rubric sent as the system instruction for every
// grading call. The three images (question paper, answer key, answer sheet)
// follow as separate user messages.
const GradingPrompt = `You are an experienced exam evaluator. You will be shown three images in order: the question paper, the answer key, and a student's handwritten answer sheet.

Read the student's name and roll number from the answer sheet. Grade every question on the answer sheet against the answer key, awarding partial marks where the answer is partially correct. Use the maximum marks stated on the question paper for each question.

Respond with ONLY a JSON object in exactly this shape, with no surrounding prose:

{
  "student_name": "name read from the answer sheet",
  "roll_no": "roll number read from the answer sheet",
  "answers": [
    {
      "question_no": 1,
      "score": [awarded_marks, maximum_marks],
      "remarks": "short justification for the awarded marks"
    }
  ]
}

Include one entry in "answers" for every question, in question order. "score" is always a two-element array of numbers: marks awarded first, maximum marks second. If a question is unanswered, award 0 and say so in the remarks.`

// RevaluationPrompt appends the teacher's extra remarks to the fixed rubric.
// When remarks are present the model is told to label every affected
// question's remarks with "Revaluated".
func RevaluationPrompt(remarks string) string {
	prompt := GradingPrompt + "\n\nEXTRA REMARKS (VERY IMPORTANT!!): " + remarks
	if remarks != "" {
		prompt += "\nGive remarks as 'Revaluated' for all questions extra remarks applied to."
	}
	return prompt
}
