// Package assistant wraps the single outbound generative-AI call the system
// makes: a free-text drug interaction question. The service is treated as an
// opaque collaborator with no retry policy; failures come back as errors and
// never affect anything else.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

var ErrEmptyAnswer = errors.New("assistant returned an empty answer")

type AssistantService interface {
	AnalyzeDrugInteraction(ctx context.Context, drugName, question string) (string, error)
}

type Assistant struct {
	client *openai.Client
}

func NewAssistant(apiKey string) *Assistant {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Assistant{client: &client}
}

func (a *Assistant) AnalyzeDrugInteraction(ctx context.Context, drugName, question string) (string, error) {
	prompt := fmt.Sprintf(`You are a clinical pharmacist assistant.
Answer the question about the drug below concisely and factually.
Always mention when the user should consult a physician or pharmacist.
Never invent interactions you are not certain about.

Drug: %s

Question: %s`, drugName, question)

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("interaction analysis failed: %w", err)
	}

	answer := resp.OutputText()
	if answer == "" {
		return "", ErrEmptyAnswer
	}

	return answer, nil
}
