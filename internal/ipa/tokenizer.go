package ipa

// Separator delimits labels in the input sequence.
const Separator = ' '

// Tokenize splits input on single spaces. Empty input and empty tokens
// (leading, trailing or doubled separators) are rejected.
func Tokenize(input string) ([]Label, error) {
	if input == "" {
		return nil, &MalformedInputError{Offset: -1, Reason: "empty input"}
	}

	labels := make([]Label, 0, len(input)/2+1)
	start := 0
	for i := 0; i < len(input); i++ {
		if input[i] != Separator {
			continue
		}
		if i == start {
			reason := "doubled separator"
			if i == 0 {
				reason = "leading separator"
			}
			return nil, &MalformedInputError{Offset: i, Reason: reason}
		}
		labels = append(labels, Label(input[start:i]))
		start = i + 1
	}
	if start == len(input) {
		return nil, &MalformedInputError{Offset: len(input) - 1, Reason: "trailing separator"}
	}
	labels = append(labels, Label(input[start:]))

	return labels, nil
}
