package regex

const (
	pre  = OptionalTextPre
	post = OptionalTextPost
	mid  = OptionalTextMid
)

var MyNameIsTemplate = register(&Template{
	Name: "MyNameIs",
	Slots: map[string]Slot{
		"my_name_is_noncontextual": Alternatives(MyNameIsNonContextual),
		"my_name_is_contextual":    Alternatives(MyNameIsContextual),
		"name":                     Pattern(NonEmptyText),
	},
	Templates: []string{
		pre + "{my_name_is_noncontextual} {name}",
		pre + "{my_name_is_contextual} {name}",
	},
	PositiveExamples: []Example{
		{"my name is abi", map[string]string{"my_name_is_noncontextual": "my name is", "name": "abi"}},
		{"yes my name is abi", map[string]string{"my_name_is_noncontextual": "my name is", "name": "abi"}},
		{"it's abi", map[string]string{"my_name_is_contextual": "it's", "name": "abi"}},
	},
	NegativeExamples: []string{"mmy name is abi", "my name"},
})

// MyNameIsNonContextualTemplate only accepts phrases that introduce a name
// without the bot having asked for it.
var MyNameIsNonContextualTemplate = register(&Template{
	Name: "MyNameIsNonContextual",
	Slots: map[string]Slot{
		"my_name_is_noncontextual": Alternatives(MyNameIsNonContextual),
		"name":                     Pattern(NonEmptyText),
	},
	Templates: []string{pre + "{my_name_is_noncontextual} {name}"},
	PositiveExamples: []Example{
		{"my name is abi", map[string]string{"my_name_is_noncontextual": "my name is", "name": "abi"}},
	},
	NegativeExamples: []string{"i'm tired", "it's abi"},
})

var MyNameIsNotTemplate = register(&Template{
	Name: "MyNameIsNot",
	Slots: map[string]Slot{
		"my_name_is_not": Alternatives(MyNameIsNot),
		"name":           Pattern(NonEmptyText),
	},
	Templates: []string{
		pre + "{my_name_is_not} {name}",
		pre + "{my_name_is_not}" + post,
	},
	PositiveExamples: []Example{
		{"my name is not abi", map[string]string{"my_name_is_not": "my name is not", "name": "abi"}},
		{"that's not my name", map[string]string{"my_name_is_not": "that's not my name"}},
	},
	NegativeExamples: []string{"my name is abi", "my name", "i'm tired"},
})

var DoesNotWantToSayNameTemplate = register(&Template{
	Name:      "DoesNotWantToSayName",
	Slots:     map[string]Slot{"negative_word": Alternatives(NegativeWords)},
	Templates: []string{pre + "{negative_word}" + post},
	PositiveExamples: []Example{
		{"no that's creepy", map[string]string{"negative_word": "no"}},
		{"i'd rather not say", map[string]string{"negative_word": "not"}},
	},
	NegativeExamples: []string{"my name is abi", "it's sarah"},
})

var HowAreYouTemplate = register(&Template{
	Name: "HowAreYou",
	Slots: map[string]Slot{
		"how_are_you_noncontextual": Alternatives(HowAreYouNonContextual),
		"how_are_you_contextual":    Alternatives(HowAreYouContextual),
	},
	Templates: []string{
		pre + "{how_are_you_noncontextual}" + post,
		pre + "{how_are_you_contextual}" + post,
	},
	PositiveExamples: []Example{
		{"how are you", map[string]string{"how_are_you_noncontextual": "how are you"}},
		{"it was good and you", map[string]string{"how_are_you_contextual": "and you"}},
		{"tell me about your day alexa", map[string]string{"how_are_you_noncontextual": "your day"}},
		{"great thanks how's yours", map[string]string{"how_are_you_contextual": "how's yours"}},
	},
	NegativeExamples: []string{"my day was good and i'm talking to you"},
})

var WhatAboutYouTemplate = register(&Template{
	Name:      "WhatAboutYou",
	Slots:     map[string]Slot{"what_about_you": Alternatives(WhatAboutYou)},
	Templates: []string{pre + "{what_about_you}" + post},
	PositiveExamples: []Example{
		{"what about you", map[string]string{"what_about_you": "what about you"}},
		{"i'm grateful for food what about you", map[string]string{"what_about_you": "what about you"}},
		{"it's hard to think of one but how about you", map[string]string{"what_about_you": "how about you"}},
	},
	NegativeExamples: []string{"how are you"},
})

// StopTemplate matches utterances that are an unambiguous request to end the
// conversation now.
var StopTemplate = register(&Template{
	Name: "Stop",
	Slots: map[string]Slot{
		"optional_name_calling": Alternatives(OptionalNameCalling),
		"optional_stop_pre":     Alternatives(OptionalStopPre),
		"stop":                  Alternatives(Concat(StopAmbiguous, Stop)),
		"optional_stop_post":    Alternatives(OptionalStopPost),
	},
	Templates: []string{"{optional_name_calling}{optional_stop_pre}{stop}{optional_stop_post}"},
	PositiveExamples: []Example{
		{"stop", map[string]string{"optional_name_calling": "", "optional_stop_pre": "", "stop": "stop", "optional_stop_post": ""}},
		{"please stop", map[string]string{"optional_name_calling": "please ", "optional_stop_pre": "", "stop": "stop", "optional_stop_post": ""}},
		{"stop talking", map[string]string{"optional_name_calling": "", "optional_stop_pre": "", "stop": "stop talking", "optional_stop_post": ""}},
		{"good night alexa", map[string]string{"optional_name_calling": "", "optional_stop_pre": "", "stop": "good night", "optional_stop_post": " alexa"}},
		{"would you stop", map[string]string{"optional_name_calling": "", "optional_stop_pre": "would you ", "stop": "stop", "optional_stop_post": ""}},
	},
	NegativeExamples: []string{"i want to chat", "stopping", "why did you stop", "turn off my dad", "would you stop asking me questions"},
})

// TryingToStopTemplate matches utterances that probably mean the user wants
// to leave, which warrants a confirmation first.
var TryingToStopTemplate = register(&Template{
	Name: "TryingToStop",
	Slots: map[string]Slot{
		"stop":         Alternatives([]string{"end", "stop", "stopping", "don't like", "cancel", "exit", "off"}),
		"conversation": Alternatives([]string{"conversation", "dialogue", "dialog", "chat", "chatting", "socialbot", "social bot"}),
		"stop_precise": Alternatives(Concat(Stop, StopLessPrecise)),
	},
	Templates: []string{
		pre + "{stop}" + OptionalText + "{conversation}" + post,
		"do you just talk all (the )?time",
		"help",
		pre + "{stop_precise}" + post,
	},
	PositiveExamples: []Example{
		{"ending our conversation", map[string]string{"stop": "end", "conversation": "conversation"}},
		{"i don't like the chatting", map[string]string{"stop": "don't like", "conversation": "chatting"}},
		{"no why can't we can stop the chat", map[string]string{"stop": "stop", "conversation": "chat"}},
		{"stop talking to me", map[string]string{"stop_precise": "stop talking"}},
		{"that's enough i'm finished", map[string]string{"stop_precise": "i'm finished"}},
		{"please leave me alone", map[string]string{"stop_precise": "leave me alone"}},
		{"you can stop now", map[string]string{"stop_precise": "stop now"}},
		{"i have to go", map[string]string{"stop_precise": "i have to go"}},
		{"help", nil},
	},
	NegativeExamples: []string{"let's keep the conversation going", "i love this conversation", "why did you stop"},
})

var CriticismTemplate = register(&Template{
	Name: "Criticism",
	Slots: map[string]Slot{
		"criticism": Pattern("(?:" + OneOf(Intensifiers) + " )*" + OneOf(Criticism) + "+"),
	},
	Templates: []string{
		pre + "you're {criticism}" + post,
		pre + "you are {criticism}" + post,
		pre + "you {criticism}" + post,
		pre + "{criticism} alexa" + post,
		pre + "alexa's {criticism}" + post,
		pre + "alexa is {criticism}" + post,
		pre + "what's wrong with you" + post,
	},
	PositiveExamples: []Example{
		{"you're stupid", map[string]string{"criticism": "stupid"}},
		{"you're so stupid", map[string]string{"criticism": "so stupid"}},
		{"why are you so bad", map[string]string{"criticism": "so bad"}},
		{"you suck alexa", map[string]string{"criticism": "suck"}},
		{"alexa is drunk", map[string]string{"criticism": "drunk"}},
		{"what's wrong with you", nil},
	},
	NegativeExamples: []string{"you're so cool", "that's dumb", "do you think i'm stupid"},
})

var ClosingNegativeConfirmationTemplate = register(&Template{
	Name: "ClosingNegativeConfirmation",
	Slots: map[string]Slot{
		"no":      Alternatives(NegativeConfirmation),
		"no_stop": Alternatives(NegativeConfirmationClosing),
	},
	Templates: []string{
		pre + "{no}" + post,
		pre + "{no_stop}" + post,
		"i never meant that",
		"i still want to talk to you",
		"that's not what i said",
		"what are you talking about",
	},
	PositiveExamples: []Example{
		{"no", map[string]string{"no": "no"}},
		{"wait no", map[string]string{"no": "no"}},
		{"nope", map[string]string{"no": "nope"}},
		{"i don't want to exit", map[string]string{"no_stop": "don't want"}},
		{"keep going", map[string]string{"no_stop": "keep going"}},
		{"that's wrong", map[string]string{"no_stop": "wrong"}},
		{"what are you talking about", nil},
		{"i never meant that", nil},
	},
	NegativeExamples: []string{"ya", "yeah", "yes", "you can go", "bye", "yes exit", "goodbye"},
})

var ClosingPositiveConfirmationTemplate = register(&Template{
	Name:      "ClosingPositiveConfirmation",
	Slots:     map[string]Slot{"pos_confirm": Alternatives(PositiveConfirmationClosing)},
	Templates: []string{pre + "{pos_confirm}" + post},
	PositiveExamples: []Example{
		{"yes", map[string]string{"pos_confirm": "yes"}},
		{"yea", map[string]string{"pos_confirm": "yea"}},
		{"yep", map[string]string{"pos_confirm": "yep"}},
		{"yeah", map[string]string{"pos_confirm": "yeah"}},
		{"stop talking", map[string]string{"pos_confirm": "stop"}},
		{"that's right", map[string]string{"pos_confirm": "right"}},
		{"end the conversation", map[string]string{"pos_confirm": "end"}},
	},
	NegativeExamples: []string{"keep talking", "no that's wrong", "that's not what i said"},
})

var ComplaintClarificationTemplate = register(&Template{
	Name:  "ComplaintClarification",
	Slots: map[string]Slot{"clarification": Alternatives(ComplaintClarify)},
	Templates: []string{
		pre + "{clarification}" + post,
		"what",
		"huh",
		"repeat",
		"pardon( me)?",
		"excuse me",
	},
	PositiveExamples: []Example{
		{"what", nil},
		{"what do you mean alexa", map[string]string{"clarification": "what do you mean"}},
		{"say that again", map[string]string{"clarification": "say that again"}},
		{"what are you talking about", map[string]string{"clarification": "what are you talking about"}},
		{"i have no idea what you're talking about", map[string]string{"clarification": "no idea what you're talking about"}},
		{"pardon me", nil},
	},
	NegativeExamples: []string{"what is your favorite color", "what do you want to talk about", "i don't know what to talk about"},
})

var ComplaintMisheardTemplate = register(&Template{
	Name:  "ComplaintMisheard",
	Slots: map[string]Slot{"misheard": Alternatives(ComplaintMisheard)},
	Templates: []string{
		pre + "{misheard}" + post,
		"i asked" + post,
	},
	PositiveExamples: []Example{
		{"no i said corona virus", map[string]string{"misheard": "no i said"}},
		{"i didn't say that", map[string]string{"misheard": "i didn't say"}},
		{"i asked what your favorite color is", nil},
	},
	NegativeExamples: []string{"i said that i like dogs", "you're listening to me"},
})

var ComplaintRepetitionTemplate = register(&Template{
	Name:      "ComplaintRepetition",
	Slots:     map[string]Slot{"repetition": Alternatives(ComplaintRepetition)},
	Templates: []string{pre + "{repetition}" + post},
	PositiveExamples: []Example{
		{"you said that already", map[string]string{"repetition": "you said that already"}},
		{"alexa stop repeating yourself", map[string]string{"repetition": "stop repeating"}},
		{"we already talked about cats", map[string]string{"repetition": "we already talked about"}},
	},
	NegativeExamples: []string{"could you repeat that", "please say that again"},
})

var ComplaintPrivacyTemplate = register(&Template{
	Name:      "ComplaintPrivacy",
	Slots:     map[string]Slot{"privacy": Alternatives(ComplaintPrivacy)},
	Templates: []string{pre + "{privacy}" + post},
	PositiveExamples: []Example{
		{"none of your business", map[string]string{"privacy": "none of your business"}},
		{"why did you ask me that", map[string]string{"privacy": "why did you ask"}},
		{"i'm not telling you that", map[string]string{"privacy": "i'm not telling you"}},
	},
	NegativeExamples: []string{"i want to tell you", "what is a small business"},
})

var DontKnowTemplate = register(&Template{
	Name:      "DontKnow",
	Slots:     map[string]Slot{"dont_know": Alternatives(DontKnowExpressions)},
	Templates: []string{pre + "{dont_know}" + post},
	PositiveExamples: []Example{
		{"i honestly don't know", map[string]string{"dont_know": "don't know"}},
		{"i'm not sure", map[string]string{"dont_know": "not sure"}},
		{"i don't remember", map[string]string{"dont_know": "don't remember"}},
	},
	NegativeExamples: []string{"i know"},
})

var BackChannelingTemplate = register(&Template{
	Name:      "BackChanneling",
	Slots:     map[string]Slot{"backchannel": Alternatives(BackChanneling)},
	Templates: []string{"{backchannel}"},
	PositiveExamples: []Example{
		{"that's cool", map[string]string{"backchannel": "that's cool"}},
		{"cool", map[string]string{"backchannel": "cool"}},
		{"okay", map[string]string{"backchannel": "okay"}},
	},
	NegativeExamples: []string{"i know"},
})

var EverythingTemplate = register(&Template{
	Name:      "Everything",
	Slots:     map[string]Slot{"everything": Alternatives(EverythingExpressions)},
	Templates: []string{pre + "{everything}" + post},
	PositiveExamples: []Example{
		{"i like everything", map[string]string{"everything": "everything"}},
		{"i like a lot of things", map[string]string{"everything": "a lot of"}},
	},
	NegativeExamples: []string{"i love pasta"},
})

var NotThingTemplate = register(&Template{
	Name:      "NotThing",
	Slots:     map[string]Slot{"nothing": Alternatives(NothingExpressions)},
	Templates: []string{pre + "{nothing}" + post},
	PositiveExamples: []Example{
		{"i like nothing", map[string]string{"nothing": "nothing"}},
		{"i don't have one", map[string]string{"nothing": "don't have one"}},
		{"i don't have a favorite", map[string]string{"nothing": "don't have a favorite"}},
	},
	NegativeExamples: []string{"i like pasta"},
})

var YesTemplate = register(&Template{
	Name: "Yes",
	Slots: map[string]Slot{
		"yes_word":         Alternatives(YesWords),
		"single_word":      Alternatives([]string{"course", "definitely", "totally", "obviously"}),
		"neutral_positive": Alternatives([]string{"guess", "suppose", "think so", "do"}),
	},
	Templates: []string{
		pre + "{yes_word}" + post,
		"{single_word}",
		"i {neutral_positive}",
	},
	PositiveExamples: []Example{
		{"yes let's keep talking", map[string]string{"yes_word": "yes"}},
		{"alright i will keep talking", map[string]string{"yes_word": "alright"}},
		{"course", map[string]string{"single_word": "course"}},
		{"i guess", map[string]string{"neutral_positive": "guess"}},
	},
	NegativeExamples: []string{"i don't want to talk about this any more", "can we talk about something else"},
})

// NotYesTemplate catches phrases containing a yes word that are not a yes.
var NotYesTemplate = register(&Template{
	Name:      "NotYes",
	Slots:     map[string]Slot{"phrase": Alternatives([]string{"right now", "right away", "right there", "right here"})},
	Templates: []string{pre + "{phrase}" + post},
	PositiveExamples: []Example{
		{"i'm not watching any tv show right now", map[string]string{"phrase": "right now"}},
	},
	NegativeExamples: []string{"yes"},
})

var noSafeWords = []string{"bad", "problem", "problems", "worries", "worry", "doubt", "kidding", "joke"}

// NoTemplate matches an utterance opening with a negative word. A match is
// only a "no" when NoSafeTemplate does not also match.
var NoTemplate = register(&Template{
	Name: "No",
	Slots: map[string]Slot{
		"continuer": Alternatives(Continuer),
		"neg_word":  Alternatives(NegativeWords),
	},
	Templates: []string{
		"{continuer} {neg_word}" + post,
		"{neg_word}" + post,
	},
	PositiveExamples: []Example{
		{"no", map[string]string{"neg_word": "no"}},
		{"no i don't want to talk about that", map[string]string{"neg_word": "no"}},
		{"hmm nah i don't think so", map[string]string{"continuer": "hmm", "neg_word": "nah"}},
	},
	NegativeExamples: []string{"ok", "sure", "ok please tell me more", "i would really like to hear more", "i have no food", "i have no idea"},
})

// NoSafeTemplate matches negative words that are used positively, as in
// "not bad" or "no worries".
var NoSafeTemplate = register(&Template{
	Name: "NoSafe",
	Slots: map[string]Slot{
		"continuer": Alternatives(Continuer),
		"neg_word":  Alternatives(NegativeWords),
		"safe":      Alternatives(noSafeWords),
	},
	Templates: []string{
		"{continuer} {neg_word} {safe}" + post,
		"{neg_word} {safe}" + post,
	},
	PositiveExamples: []Example{
		{"not bad", map[string]string{"neg_word": "not", "safe": "bad"}},
		{"hmm no worries", map[string]string{"continuer": "hmm", "neg_word": "no", "safe": "worries"}},
	},
	NegativeExamples: []string{"no i don't"},
})

// IsNo reports whether the utterance is a negative answer.
func IsNo(utterance string) bool {
	return NoTemplate.Matches(utterance) && !NoSafeTemplate.Matches(utterance)
}

// IsYes reports whether the utterance is a positive answer.
func IsYes(utterance string) bool {
	return YesTemplate.Matches(utterance) && !NotYesTemplate.Matches(utterance) && !IsNo(utterance)
}

var ChangeTopicTemplate = register(&Template{
	Name: "ChangeTopic",
	Slots: map[string]Slot{
		"change_topic": Alternatives([]string{"talk about", "tell me about", "chat about"}),
		"switch":       Alternatives([]string{"switch", "change"}),
	},
	Templates: []string{
		pre + "{change_topic}" + post,
		pre + "{switch}" + mid + "topic(s)?" + post,
	},
	PositiveExamples: []Example{
		{"let's talk about grand theft auto", map[string]string{"change_topic": "talk about"}},
		{"can you tell me about wolves", map[string]string{"change_topic": "tell me about"}},
		{"can we switch the topic", map[string]string{"switch": "switch"}},
	},
	NegativeExamples: []string{"i love playing on my nintendo switch", "no there isn't a problem"},
})

var DisinterestedTemplate = register(&Template{
	Name:  "Disinterested",
	Slots: map[string]Slot{},
	Templates: []string{
		pre + "don't" + mid + "care" + post,
		pre + "not" + mid + "interested" + post,
		pre + "(boring|bored)" + post,
		pre + "who cares" + post,
		pre + "i hate (this|it)",
	},
	PositiveExamples: []Example{
		{"i don't really care", nil},
		{"yeah i hate it", nil},
		{"this is boring", nil},
	},
	NegativeExamples: []string{"i care about my family"},
})

var SayThatAgainTemplate = register(&Template{
	Name:      "SayThatAgain",
	Slots:     map[string]Slot{"say_that_again": Alternatives(SayThatAgain)},
	Templates: []string{pre + "{say_that_again}" + post},
	PositiveExamples: []Example{
		{"say that again", map[string]string{"say_that_again": "say that again"}},
		{"what did you just say", map[string]string{"say_that_again": "what did you just say"}},
		{"alexa say that again please", map[string]string{"say_that_again": "say that again"}},
		{"could you please repeat yourself", map[string]string{"say_that_again": "could you please repeat yourself"}},
	},
	NegativeExamples: []string{"i'm sorry to hear that"},
})

var RequestNameTemplate = register(&Template{
	Name:      "RequestName",
	Slots:     map[string]Slot{"request": Alternatives([]string{"tell", "what's", "say", "what", "know", "repeat"})},
	Templates: []string{pre + "{request}" + mid + "my name" + post},
	PositiveExamples: []Example{
		{"what's my name", map[string]string{"request": "what's"}},
		{"say my name", map[string]string{"request": "say"}},
		{"can you tell me my name", map[string]string{"request": "tell"}},
		{"what is my name", map[string]string{"request": "what"}},
	},
	NegativeExamples: []string{"what's the name of the song", "what's your name"},
})

var RequestStoryTemplate = register(&Template{
	Name: "RequestStory",
	Slots: map[string]Slot{
		"request": Alternatives([]string{"tell", "know", "have"}),
		"story":   Alternatives([]string{"story", "stories"}),
	},
	Templates: []string{pre + "{request}" + mid + "{story}" + post},
	PositiveExamples: []Example{
		{"can you tell me a story", map[string]string{"request": "tell", "story": "story"}},
		{"tell me a story", map[string]string{"request": "tell", "story": "story"}},
		{"do you know any stories", map[string]string{"request": "know", "story": "stories"}},
	},
	NegativeExamples: []string{"i read a story"},
})

var RequestAgeTemplate = register(&Template{
	Name:  "RequestAge",
	Slots: map[string]Slot{"request": Alternatives([]string{"tell", "what's", "what is", "know"})},
	Templates: []string{
		pre + "{request}" + mid + "your age" + post,
		pre + "{request}" + mid + "your birthday" + post,
		pre + "how old" + mid + "you are" + post,
		pre + "how old" + mid + "are you" + post,
		pre + "when is your birthday" + post,
	},
	PositiveExamples: []Example{
		{"how old are you", nil},
		{"what's your age", map[string]string{"request": "what's"}},
		{"tell me how old you are", nil},
	},
	NegativeExamples: []string{"how old do you think the earth is"},
})

var ComplimentTemplate = register(&Template{
	Name: "Compliment",
	Slots: map[string]Slot{
		"target": Alternatives([]string{"you", "you re", "your", "you're"}),
		"compliment": Alternatives([]string{
			"amazing", "awesome", "great", "smart", "funny", "cool", "wonderful", "the best",
			"sweet", "nice", "kind", "good",
		}),
		"i":        Alternatives([]string{"i am", "i'm", "i"}),
		"pleasure": Alternatives([]string{"enjoy", "like", "love"}),
		"talk":     Alternatives([]string{"talk", "talking", "conversation", "chatting"}),
		"thank":    Alternatives([]string{"thank you", "thanks"}),
	},
	Templates: []string{
		pre + "{target}" + mid + "{compliment}" + post,
		pre + "love you" + post,
		pre + "{i}" + mid + "{pleasure}" + mid + "{talk}" + post,
		pre + "{thank}" + mid + "{talk}" + post,
	},
	PositiveExamples: []Example{
		{"i love you alexa", nil},
		{"you're the most amazing person", map[string]string{"target": "you're", "compliment": "amazing"}},
		{"i like our conversation", map[string]string{"i": "i", "pleasure": "like", "talk": "conversation"}},
		{"thank you for talking to me", map[string]string{"thank": "thank you", "talk": "talking"}},
	},
	NegativeExamples: []string{"that wasn't funny"},
})

var AreYouRecordingTemplate = register(&Template{
	Name: "AreYouRecording",
	Slots: map[string]Slot{
		"record":   Alternatives([]string{"record", "recorded", "records", "recording"}),
		"modifier": Alternatives([]string{"have", "will be", "will", "are", "like", "like to", "want to"}),
	},
	Templates: []string{
		pre + "you {record}" + post,
		pre + "you {modifier} {record}" + post,
	},
	PositiveExamples: []Example{
		{"are you recording this", map[string]string{"record": "recording"}},
		{"i bet you have recorded our conversations", map[string]string{"modifier": "have", "record": "recorded"}},
		{"do you like recording conversations", map[string]string{"modifier": "like", "record": "recording"}},
	},
	NegativeExamples: []string{"the government might be recording this interaction", "you know people like to record conversations"},
})

var IdentityQuestionTemplate = register(&Template{
	Name:      "IdentityQuestion",
	Slots:     map[string]Slot{"topic": Alternatives(IdentityTopics)},
	Templates: []string{pre + "{topic}" + post},
	PositiveExamples: []Example{
		{"what's your name", map[string]string{"topic": "your name"}},
		{"alexa who are you", map[string]string{"topic": "who are you"}},
	},
	NegativeExamples: []string{"i like your dog"},
})

var ThatsTemplate = register(&Template{
	Name: "Thats",
	Slots: map[string]Slot{
		"thats": Alternatives([]string{"that's", "that is", "thats"}),
		"adj":   Alternatives(ThatsAdjectives),
	},
	Templates: []string{pre + "{thats} (so |really |very )?{adj}" + post},
	PositiveExamples: []Example{
		{"wow that's so cool", map[string]string{"thats": "that's", "adj": "cool"}},
	},
	NegativeExamples: []string{"that's my dog"},
})

var DidntKnowTemplate = register(&Template{
	Name:      "DidntKnow",
	Slots:     map[string]Slot{"didnt_know": Alternatives(DidntKnow)},
	Templates: []string{pre + "{didnt_know}" + post},
	PositiveExamples: []Example{
		{"i didn't know that", map[string]string{"didnt_know": "didn't know"}},
	},
	NegativeExamples: []string{"i know that"},
})

var SurprisedTemplate = register(&Template{
	Name:  "Surprised",
	Slots: map[string]Slot{},
	Templates: []string{
		"(oh )?really",
		"wow( really)?",
	},
	PositiveExamples: []Example{{"really", nil}, {"oh really", nil}, {"wow", nil}},
	NegativeExamples: []string{"really good"},
})

var OpinionTemplate = register(&Template{
	Name:      "Opinion",
	Slots:     map[string]Slot{"opinion": Alternatives(Opinion)},
	Templates: []string{pre + "{opinion}" + post},
	PositiveExamples: []Example{
		{"i think it's great", map[string]string{"opinion": "i think"}},
	},
	NegativeExamples: []string{"what do you think"},
})

var PositiveNavigationTemplate = register(&Template{
	Name: "PositiveNavigation",
	Slots: map[string]Slot{
		"nav":   Alternatives(PositiveNavigation),
		"topic": Pattern(NonEmptyText),
	},
	Templates: []string{pre + "{nav} {topic}"},
	PositiveExamples: []Example{
		{"can we talk about music", map[string]string{"nav": "talk about", "topic": "music"}},
		{"let's talk about dogs", map[string]string{"nav": "talk about", "topic": "dogs"}},
	},
	NegativeExamples: []string{"i like to talk", "talk about"},
})

var PositiveNavigationNoTopicTemplate = register(&Template{
	Name:      "PositiveNavigationNoTopic",
	Slots:     map[string]Slot{"nav": Alternatives(PositiveNavigationNoTopic)},
	Templates: []string{pre + "{nav}"},
	PositiveExamples: []Example{
		{"let's chat", map[string]string{"nav": "let's chat"}},
		{"alexa i want to talk", map[string]string{"nav": "i want to talk"}},
	},
	NegativeExamples: []string{"let's chat about dogs"},
})

var NegativeNavigationTemplate = register(&Template{
	Name: "NegativeNavigation",
	Slots: map[string]Slot{
		"neg":   Alternatives(NegativeNavigation),
		"topic": Pattern(NonEmptyText),
	},
	Templates: []string{
		pre + "{neg} {topic}",
		pre + "{neg}" + post,
	},
	PositiveExamples: []Example{
		{"i don't want to talk about music", map[string]string{"neg": "don't want to talk about", "topic": "music"}},
		{"can we talk about something else", map[string]string{"neg": "talk about something else"}},
	},
	NegativeExamples: []string{"i want to talk about music"},
})

var MusicLikeTemplate = register(&Template{
	Name: "MusicLike",
	Slots: map[string]Slot{
		"like":  Alternatives([]string{"like", "love", "enjoy"}),
		"music": Alternatives([]string{"music", "songs", "singing", "listening to music"}),
	},
	Templates: []string{pre + "i (really )?{like} {music}" + post},
	PositiveExamples: []Example{
		{"i really love music", map[string]string{"like": "love", "music": "music"}},
		{"i like listening to music", map[string]string{"like": "like", "music": "listening to music"}},
	},
	NegativeExamples: []string{"i don't like music"},
})

var FoodLikeTemplate = register(&Template{
	Name: "FoodLike",
	Slots: map[string]Slot{
		"like": Alternatives([]string{"like", "love", "enjoy"}),
		"food": Alternatives([]string{"food", "cooking", "eating", "to eat", "to cook", "baking"}),
	},
	Templates: []string{pre + "i (really )?{like} {food}" + post},
	PositiveExamples: []Example{
		{"i love cooking", map[string]string{"like": "love", "food": "cooking"}},
	},
	NegativeExamples: []string{"i hate cooking"},
})

// Advice templates catch requests the red-question classifier can miss. The
// topic slot holds the phrase that gave the request away.

var FinancialAdviceTemplate = register(&Template{
	Name: "FinancialAdvice",
	Slots: map[string]Slot{
		"topic": Alternatives([]string{`what stocks?`, `invest in`, `investment`, `bank account`, `stock (?:market|price)`, `loans?`}),
	},
	Templates: []string{pre + "{topic}" + post},
	PositiveExamples: []Example{
		{"what stocks should i buy", map[string]string{"topic": "what stocks"}},
		{"should i invest in gold", map[string]string{"topic": "invest in"}},
		{"can i get a loan", map[string]string{"topic": "loan"}},
	},
	NegativeExamples: []string{"i have many investments", "i like to read"},
})

var PsychiatricAdviceTemplate = register(&Template{
	Name: "PsychiatricAdvice",
	Slots: map[string]Slot{
		"topic": Alternatives([]string{`kill(?:ing|ed|s)? (?:my)?self`, `hear(?:ing|d)? voices`, `want(?:s|ed)? to die`, `suicid(?:e|al)`, `depression`}),
	},
	Templates: []string{pre + "{topic}" + post},
	PositiveExamples: []Example{
		{"i want to kill myself", map[string]string{"topic": "kill myself"}},
		{"i keep hearing voices", map[string]string{"topic": "hearing voices"}},
	},
	NegativeExamples: []string{"this song kills me", "i want to dine out"},
})

var MedicalAdviceTemplate = register(&Template{
	Name: "MedicalAdvice",
	Slots: map[string]Slot{
		"topic": Alternatives([]string{`pills`, `vaccines?`, `overdose`, `opioids`, `addict(?:ion|ed)?`, `symptoms`, `fever`, `prescription`, `cough`, `medicine`, `medical`}),
	},
	Templates: []string{pre + "{topic}" + post},
	PositiveExamples: []Example{
		{"what medicine should i take", map[string]string{"topic": "medicine"}},
		{"i have a fever", map[string]string{"topic": "fever"}},
	},
	NegativeExamples: []string{"i love medieval history", "he coughed"},
})

var LegalAdviceTemplate = register(&Template{
	Name: "LegalAdvice",
	Slots: map[string]Slot{
		"topic": Alternatives([]string{`is (?:it )?legal`, `lawyer`, `legal advice`}),
	},
	Templates: []string{pre + "{topic}" + post},
	PositiveExamples: []Example{
		{"is it legal to drive barefoot", map[string]string{"topic": "is it legal"}},
		{"do i need a lawyer", map[string]string{"topic": "lawyer"}},
	},
	NegativeExamples: []string{"that's illegal", "my lawyers are great"},
})

var personalSharingSlots = map[string]Slot{
	"i":             Alternatives(FirstPersonI),
	"my":            Alternatives(FirstPersonMe),
	"affliction":    Alternatives(Afflictions),
	"negative_word": Alternatives(NegativeEmotionWords),
}

var personalSharingPatterns = []string{
	pre + "{i}" + mid + "{affliction}" + post,
	pre + "{my}" + mid + "{affliction}" + post,
	pre + "{i}" + mid + "{negative_word}" + post,
}

var personalSharingExamples = []Example{
	{"my dog died recently", map[string]string{"my": "my", "affliction": "died"}},
	{"my aunt passed away", map[string]string{"my": "my", "affliction": "passed away"}},
	{"i'm so lonely", map[string]string{"i": "i'm", "negative_word": "lonely"}},
	{"i am miserable", map[string]string{"i": "i", "negative_word": "miserable"}},
	{"well i get bullied a lot", map[string]string{"i": "i", "affliction": "bullied"}},
}

// PersonalSharingTemplate matches the user disclosing something painful
// about themselves.
var PersonalSharingTemplate = register(&Template{
	Name:             "PersonalSharing",
	Slots:            personalSharingSlots,
	Templates:        personalSharingPatterns,
	PositiveExamples: personalSharingExamples,
	NegativeExamples: []string{
		"no there isn't a problem",
		"did you want to talk about something",
		"george washington died very suddenly",
		"retired",
		"my name is corinne lonely faulkner",
	},
})

// PersonalSharingContinuedTemplate also accepts news about someone else once
// the user is already sharing.
var PersonalSharingContinuedTemplate = register(&Template{
	Name: "PersonalSharingContinued",
	Slots: map[string]Slot{
		"i":                 Alternatives(FirstPersonI),
		"my":                Alternatives(FirstPersonMe),
		"affliction":        Alternatives(Afflictions),
		"negative_word":     Alternatives(NegativeEmotionWords),
		"third_person_word": Alternatives(ThirdPersonWords),
	},
	Templates: append(append([]string(nil), personalSharingPatterns...),
		pre+"{third_person_word}"+mid+"{affliction}"+post),
	PositiveExamples: append(append([]Example(nil), personalSharingExamples...),
		Example{"she died very suddenly", map[string]string{"third_person_word": "she", "affliction": "died"}}),
	NegativeExamples: []string{"george washington died very suddenly", "retired"},
})

var NegativeEmotionTemplate = register(&Template{
	Name: "NegativeEmotion",
	Slots: map[string]Slot{
		"negative_emotion": Alternatives(NegativeEmotionWords),
		"positive_emotion": Alternatives(PositiveEmotionWords),
		"negator":          Alternatives(NegatingWords),
	},
	Templates: []string{
		pre + "{negative_emotion}" + post,
		pre + "{negator}" + mid + "{positive_emotion}" + post,
	},
	PositiveExamples: []Example{
		{"i'm feeling pretty sad", map[string]string{"negative_emotion": "sad"}},
		{"all of this doesn't make me very happy", map[string]string{"negator": "doesn't", "positive_emotion": "happy"}},
		{"it's lonely", map[string]string{"negative_emotion": "lonely"}},
	},
	NegativeExamples: []string{"i'm pretty happy about how this turned out", "did you want to talk about something"},
})

var GratitudeTemplate = register(&Template{
	Name:      "Gratitude",
	Slots:     map[string]Slot{"gratitude_word": Alternatives(GratitudeWords)},
	Templates: []string{pre + "{gratitude_word}" + post},
	PositiveExamples: []Example{
		{"thank you very much", map[string]string{"gratitude_word": "thank you"}},
		{"thanks for saying that", map[string]string{"gratitude_word": "thanks"}},
		{"i appreciate that", map[string]string{"gratitude_word": "appreciate"}},
		{"you're an awesome listener", map[string]string{"gratitude_word": "awesome"}},
	},
	NegativeExamples: []string{"i don't know", "where's the beef"},
})

var NegatedGratitudeTemplate = register(&Template{
	Name: "NegatedGratitude",
	Slots: map[string]Slot{
		"negator":        Alternatives(append([]string{"no"}, NegatingWords...)),
		"gratitude_word": Alternatives(GratitudeWords),
	},
	Templates: []string{pre + "{negator}" + mid + "{gratitude_word}" + post},
	PositiveExamples: []Example{
		{"no thanks", map[string]string{"negator": "no", "gratitude_word": "thanks"}},
		{"that's not helpful", map[string]string{"negator": "not", "gratitude_word": "helpful"}},
	},
	NegativeExamples: []string{"thank you that was helpful"},
})

var PersonalPronounTemplate = register(&Template{
	Name:      "PersonalPronoun",
	Slots:     map[string]Slot{"pronoun_word": Alternatives(PersonalPronouns)},
	Templates: []string{pre + "{pronoun_word}" + post},
	PositiveExamples: []Example{
		{"the doctors aren't sure if she will walk again", map[string]string{"pronoun_word": "she"}},
		{"he'd call us names since we were young", map[string]string{"pronoun_word": "he'd"}},
		{"all by myself", map[string]string{"pronoun_word": "myself"}},
		{"why would they do this to me", map[string]string{"pronoun_word": "they"}},
	},
	NegativeExamples: []string{"no there isn't a problem", "did you want to talk about something"},
})
