package regex

// Stock responses to common reactions. RGs pick from these with their own
// random source so the choice is reproducible under a fixed seed.

var ResponseToThats = []string{
	"I thought so too!",
	"Yeah, I found it pretty interesting myself.",
	"I know, right?",
}

var ResponseToDidntKnow = []string{
	"I didn't know either until recently!",
	"It surprised me too when I first heard it.",
	"There's always something new to learn.",
}

var ResponseToSurprised = []string{
	"Yes, really!",
	"I was surprised too!",
}

var ResponseToBackChanneling = []string{
	"Okay.",
	"Alright.",
	"Sure.",
}

var ResponseToOpinion = []string{
	"That's a good way to look at it.",
	"I can see why you'd think that.",
	"Thanks for sharing your thoughts with me.",
}

var ResponseToDontKnow = []string{
	"That's okay, it can be a hard one to answer.",
	"No worries, take your time.",
}

var ResponseToEverything = []string{
	"Wow, you have broad taste!",
	"It's hard to pick just one, isn't it?",
}

var ResponseToNothing = []string{
	"That's fair, not everyone has a favorite.",
	"Fair enough.",
}

// Acknowledgements open a response that moves on from the user's answer.
var Acknowledgements = []string{
	"Oh, I see.",
	"Got it.",
	"Interesting.",
	"Okay.",
}
