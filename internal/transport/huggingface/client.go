// Package huggingface adapts the Hugging Face Inference API to the domain interfaces.
package huggingface

import (
	"context"

	huggingface "github.com/hupe1980/go-huggingface"
)

// inference is the subset of the Inference API the adapters call.
type inference interface {
	featureExtraction(ctx context.Context, text string) ([]float32, error)
	textGeneration(ctx context.Context, prompt string) ([]string, error)
}

// inferenceClient binds a go-huggingface client to one model.
type inferenceClient struct {
	client *huggingface.InferenceClient
}

func newInferenceClient(token, model string) *inferenceClient {
	client := huggingface.NewInferenceClient(token)
	client.SetModel(model)
	return &inferenceClient{client: client}
}

func (c *inferenceClient) options() huggingface.Options {
	return huggingface.Options{
		WaitForModel: huggingface.PTR(true),
		UseCache:     huggingface.PTR(true),
	}
}

func (c *inferenceClient) featureExtraction(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.FeatureExtractionWithAutomaticReduction(ctx, &huggingface.FeatureExtractionRequest{
		Inputs:  []string{text},
		Options: c.options(),
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by the adapter
	}
	if len(resp) == 0 {
		return nil, nil
	}
	return resp[0], nil
}

func (c *inferenceClient) textGeneration(ctx context.Context, prompt string) ([]string, error) {
	resp, err := c.client.TextGeneration(ctx, &huggingface.TextGenerationRequest{
		Inputs:  prompt,
		Options: c.options(),
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by the adapter
	}
	out := make([]string, 0, len(resp))
	for _, r := range resp {
		out = append(out, r.GeneratedText)
	}
	return out, nil
}
