package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"ratehousing_backend/internal/ai"
)

type SmartMatchInput struct {
	UserInput           string       `json:"userInput"`
	ConversationHistory []ai.Message `json:"conversationHistory"`
}

// SmartMatch maps free-text housing preferences to filter criteria via the
// LLM. Upstream failures degrade to a clarifying message; the endpoint does
// not fail and never invents filters.
func SmartMatch(c *fiber.Ctx) error {
	input := new(SmartMatchInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if strings.TrimSpace(input.UserInput) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "userInput is required",
		})
	}

	result, err := aiClient.SmartMatch(c.Context(), input.UserInput, input.ConversationHistory)
	if err != nil {
		log.Printf("Smart match call failed: %v", err)
		result = ai.SmartMatch{
			HasMatch: false,
			Message:  "Sorry, I'm having trouble understanding. Could you try rephrasing your request?",
		}
	}

	return c.JSON(result)
}
