// Package content holds the preloaded truth/dare pools and the local
// chat pre-filter. The pools are the fallback when AI generation is
// unavailable or a player has seen everything the generator offers.
package content

import "partyrooms/internal/model"

// Pool is a mode's preloaded prompt texts, one list per question type.
type Pool struct {
	Truths []string
	Dares  []string
}

var minimalPool = Pool{
	Truths: []string{
		"What's the most embarrassing song on your playlist?",
		"What's a talent you pretend to have but absolutely don't?",
		"What's the longest you've gone without washing your hair?",
		"Who in this room would you trust to plan your birthday party?",
		"What's the weirdest food combination you secretly enjoy?",
		"What's the last lie you told, and who did you tell it to?",
		"What app do you waste the most time on?",
		"What's a nickname you've had that you hated?",
		"What's the most childish thing you still do?",
		"If you could swap lives with anyone in this room for a day, who would it be?",
	},
	Dares: []string{
		"Talk in an accent of your choice until your next turn.",
		"Let the player to your left write a status update for you.",
		"Do your best impression of another player until someone guesses who it is.",
		"Show everyone the last photo you took on your phone.",
		"Sing everything you say until your next turn.",
		"Do ten push-ups right now, narrating each one dramatically.",
		"Text a friend nothing but a single potato emoji.",
		"Balance something on your head until your next turn.",
		"Speak in rhymes until your next turn.",
		"Let the group pick a new profile picture from your camera roll.",
	},
}

var moderatePool = Pool{
	Truths: []string{
		"What's the most trouble you've ever been in?",
		"What's a secret you've never told anyone in this room?",
		"Who was your most embarrassing crush?",
		"What's the pettiest reason you've stopped talking to someone?",
		"What's the worst date you've ever been on?",
		"What's something you did as a teenager your parents still don't know about?",
		"Have you ever pretended to like a gift? What was it?",
		"What's the most cringeworthy message you've ever sent?",
		"What rumor about yourself have you heard and never corrected?",
		"What's the strangest thing you've done to impress someone?",
	},
	Dares: []string{
		"Read the last message in your group chat out loud, with feeling.",
		"Call a friend and tell them a terrible joke without laughing.",
		"Let another player go through your camera roll for thirty seconds.",
		"Post the word 'yes' with no context anywhere the group picks.",
		"Do your most dramatic soap-opera monologue about the last thing you ate.",
		"Swap an item of clothing or accessory with another player for a round.",
		"Let the group compose and send one text message from your phone.",
		"Imitate how you think you look dancing, for a full thirty seconds.",
		"Reveal your screen time report for the week.",
		"Tell the group your most recent search engine query.",
	},
}

// PoolFor returns the preloaded pool for a mode. Unknown modes fall back
// to minimal, matching the generator's behavior.
func PoolFor(mode model.GameMode) Pool {
	if mode == model.ModeModerate {
		return moderatePool
	}
	return minimalPool
}

// Texts returns the pool's list for the given question type.
func (p Pool) Texts(t model.QuestionType) []string {
	if t == model.QuestionTruth {
		return p.Truths
	}
	return p.Dares
}
