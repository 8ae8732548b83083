package service

import "fmt"

const (
	// SystemPrompt frames every completion request.
	SystemPrompt = "Vous êtes un assistant spécialisé dans la rédaction de réponses aux avis clients."

	// DefaultTone applies when neither the location nor the account
	// configures one.
	DefaultTone = "Répondez de manière professionnelle et amicale."

	// NoCommentPlaceholder stands in for reviews without written text.
	NoCommentPlaceholder = "Aucun commentaire écrit"

	// ReplyCharBudget is the character budget the prompt asks the model to
	// respect.
	ReplyCharBudget = 200
)

// BuildPrompt assembles the user prompt for one review. The output is fully
// determined by its inputs.
func BuildPrompt(locationName string, rating int, authorName, reviewText, tone, language string) string {
	if reviewText == "" {
		reviewText = NoCommentPlaceholder
	}

	return fmt.Sprintf(`Vous devez rédiger une réponse professionnelle à cet avis client :

Établissement: %s
Note: %d/5 étoiles
Auteur: %s
Avis: "%s"

Instructions de ton: %s

Rédigez une réponse appropriée, personnalisée et professionnelle en %s. La réponse doit être concise (maximum %d caractères) et adaptée à la note donnée.`,
		locationName, rating, authorName, reviewText, tone, language, ReplyCharBudget)
}
