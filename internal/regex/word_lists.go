package regex

// Word lists used to build slots. Entries are regular expressions; most are
// plain phrases.

var Yes = []string{
	"that's okay", "that's ok", "in the affirmative", "by all means", "all right",
	"very well", "of course", "go on", "yes", "ok", "sure", "yeah", "certainly",
	"absolutely", "indeed", "right", "affirmative", "agreed", "roger", "aye aye",
	"yep", "yup", "ya", "uh-huh", "okay", "okey-dokey", "okey-doke", "yea", "aye",
	"course",
}

var YesWords = []string{
	"yes", "all right", "alright", "very well", "of course", "by all means", "sure",
	"certainly", "absolutely", "indeed", "right", "affirmative", "in the affirmative",
	"agreed", "roger", "aye aye", "yeah", "yep", "yeap", "yup", "ya", "uh-huh",
	"okay", "ok", "okey-dokey", "okey-doke", "yea", "aye", "duh", "guess so", "kind of",
}

var No = []string{"no", "neither", "nothing", "nope", "none"}

var NegativeWords = []string{
	"no", "don't", "neither", "i don't know", "else", "nothing", "nope", "haven't",
	"absolutely not", "most certainly not", "of course not", "under no circumstances",
	"by no means", "not at all", "negative", "never", "not really", "uh-uh", "nah",
	"not on your life", "no way", "ixnay", "nay", "not", "na", "but", "zero",
}

// Continuer words open an utterance without carrying its meaning.
var Continuer = []string{
	"hmm", "hm", "umm", "um", "uh", "well", "oh", "ah", "so", "honestly", "actually",
	"yes", "yea", "yeah",
}

var NegativeConfirmation = []string{"no", "not", "nope"}

var PositiveConfirmationClosing = []string{
	"yes", "yea", "yep", "ok", "sure", "yeah", "okay", "correct", "that's the case",
	"that is the case", "right", "stop", "end", "exit", "goodbye", "bye",
}

var NegativeConfirmationClosing = []string{
	"keep talking", "keep going", "keep chatting", "continue", "don't stop",
	"do not stop", "don't exit", "do not exit", "don't end", "do not end", "don't go",
	"do not go", "don't mean", "do not mean", "didn't mean", "did not mean",
	"didn't want", "did not want", "don't want", "do not want", "not correct",
	"incorrect", "not right", "wrong", "not the case",
}

// MyNameIsNonContextual phrases introduce the user's name in any context.
var MyNameIsNonContextual = []string{
	"my name is", "my name's", "my names", "my name", "i'm called", "i'm cold",
	"i am called", "call me",
}

// MyNameIsContextual phrases introduce the user's name right after we asked.
var MyNameIsContextual = []string{"i'm", "i am", "it's"}

var MyNameIsNot = []string{
	"my name is not", "my name isn't", "my name's not", "my names not", "my name not",
	"i'm not called", "i'm not cold", "i am not called", "don't call me",
	"that's not my name", "that is not my name", "you got my name wrong",
	"why do you keep calling me that name", "why do you keep calling me that",
}

// StopAmbiguous words only mean stop when they are nearly the whole utterance.
var StopAmbiguous = []string{"off", "stop", "pause", "cancel", "exit"}

var OptionalNameCalling = []string{
	"(let's (please )?)?(alexa (please )?)?",
	"(please (alexa )?)?",
}

var OptionalStopPre = []string{
	"(could you (please )?)?",
	"(can you (please )?)?",
	"(will you (please )?)?",
	"(would you (please )?)?",
}

var OptionalStopPost = []string{
	"(( alexa)? please)?",
	"(( please)? alexa)?",
}

var Stop = []string{
	"bye", "goodbye", "good bye", "stop talking", "stop the conversation", "stop chat",
	"stop chatting", "stop now", "shut down", "shut up", "go away", "i'm done",
	"i'm finished", "i'm leaving", "i have to go now", "good night", "turn off",
	"turn it off", "shut off", "power off", "end chat", "end conversation",
	"normal mode", "normal alexa", "can we stop", "can you stop", "stop computer",
	"be quiet", "leave me alone",
}

// StopLessPrecise phrases route to a closing confirmation rather than an
// immediate stop.
var StopLessPrecise = []string{
	"i'm getting tired", "don't want to chat", "do not want to chat",
	"don't wan(na|t to) talk anymore", "don't wan(na|t to) chat anymore",
	"leave me alone", "stop (talking|asking)", "i (have|need|got) to go",
	"i gotta go",
}

var HowAreYouNonContextual = []string{
	"how are you", "how're you", "how's your day", "your day", "what's up with you",
	"what are you up to", "what are you doing",
}

var HowAreYouContextual = []string{
	"how's yours", "how was yours", "how about yours", "how is yours", "and you",
	"how about you", "what about you",
}

var WhatAboutYou = []string{
	"what about you", "how about you", "how's yours", "how was yours", "how about yours",
	"how is yours", "what's up with you", "and you", "what are you up to",
	"what are you doing",
}

var Criticism = []string{
	"bad", "stupid", "dumb", "buggy", "drunk", "annoying", "wrong", "idiot", "suck",
}

var Intensifiers = []string{
	"so", "very", "too", "really", "extremely", "quite", "pretty", "rather", "totally",
}

var ComplaintClarify = []string{
	"say that again",
	"what do you mean",
	"what are you saying",
	"(who|what|why)( the hell| do| the fuck| nonsense)?( are| did)? (you|we) (talk|chat)(ing)? about",
	"what did you( just)? say",
	"(can|could|would|will) you( please)? repeat",
	"(can|could|would|will) you( please)? (say|ask|ask me|tell me) (that|this) (again|another time)",
	"repeat( that| this| what you( just)?( said| were saying)?)",
	"do( not|n't) (know|understand) what (you|that) (mean|means)",
	"(still |really )?do( not|n't)( really| even)? (know|understand) what you('re| are)? (saying|talking about|asking|telling)",
	"(no|any) idea what( the heck| the hell)? you('re| are) (saying|asking|telling|talking about)",
	"(which|what)(.*) are you talking about",
	"i do( not|n't) follow",
	"but (i was(n't)?|you were(n't)?|we were(n't)?|you're( not)?|i'm( not)?|we're( not)?) talking about",
}

var ComplaintMisheard = []string{
	"i did(n't| not) (say|mean)",
	"not what i (said|meant)",
	"not what i('m| am) (saying|talking about)",
	"you did(n't| not) (hear|understand|listen)",
	"you('re| are) not (hear|understand|listen)(ing)?",
	"no i (said|meant)",
	"i never (said|meant)",
	"misheard( me| that)?",
	"heard (me|that|what i said) (wrong|incorrectly)",
	"(that|this)( is|'s) not (who|what|the 1|the one) i('m| am| was) (talking about|saying)",
}

var ComplaintRepetition = []string{
	"you already (said|asked|told)",
	"you('re| are) repeating",
	"you (said|asked( me)?|told me) (that|this|the same)( thing| question)? (already|before|earlier)",
	"stop repeating",
	"you keep (saying|doing|asking|telling)",
	"you just (said|asked|told|did)",
	"(we|you) (just|already) talk(ed)? about( this| that)?",
}

var ComplaintPrivacy = []string{
	"i do(n't| not) want to (tell|say)",
	"why (did|do) you ask",
	"why (did|do) you need to know",
	"(that's )?(not|none of) your business",
	"do(n't| not) ask me",
	"i('m| am) not going to (tell|say)( you| that)?",
	"i('m| am) not telling you",
}

var DontKnowExpressions = []string{
	"don(')?t (really |actually |quite )?know",
	"not (really |quite )?know",
	"not (really |so |quite )?sure",
	"no idea",
	"don't (really |actually |quite )?remember",
}

var BackChanneling = []string{"(that's |that )?cool", "yeah", "okay", "yes", "nice"}

var EverythingExpressions = []string{"a lot of", "lots of", "many", "everything"}

var NothingExpressions = []string{
	"nothing", "none", "don(')?t have one", "don(')?t have a (favorite|favourite)", "nobody",
}

var SayThatAgain = []string{
	"say that again",
	"what did you( just)? say",
	"(can|could|would|will) you( please)? repeat( that| yourself| what you said)?",
	"repeat that",
	"repeat what you just said",
	"what was that",
	"i didn't (quite )?catch that",
	"come again",
	"pardon",
}

// ThatsAdjectives follow "that's" in reactions such as "that's so cool".
var ThatsAdjectives = []string{
	"interesting", "cool", "amazing", "awesome", "crazy", "funny", "wild", "neat",
	"great", "fascinating", "surprising", "weird",
}

var DidntKnow = []string{"didn't know", "did not know", "never knew", "had no idea", "never heard"}

var Opinion = []string{"i think", "i feel", "i believe", "in my opinion", "personally"}

var PositiveNavigation = []string{
	"let's talk about", "let's chat about", "can we talk about", "can we chat about",
	"i want to talk about", "i wanna talk about", "i'd like to talk about",
	"tell me about", "talk about",
}

var PositiveNavigationNoTopic = []string{
	"let's talk", "let's chat", "i want to talk", "i wanna talk", "i want to chat",
	"i wanna chat", "can we talk", "can we chat",
}

var NegativeNavigation = []string{
	"don't want to talk about", "don't wanna talk about", "stop talking about",
	"talk about something else", "change the subject", "something else",
	"not interested in",
}

var IdentityTopics = []string{
	"your name", "who are you", "who made you", "who built you", "what are you",
	"tell me about yourself", "where do you live", "where are you from",
}

var FirstPersonI = []string{"i", "i'd", "i've", "i'll", "i'm"}

var FirstPersonMe = []string{"me", "my", "myself", "mine"}

var ThirdPersonWords = []string{"she", "he", "it"}

var Afflictions = []string{"died", "passed away", "die", "dying", "cancer", "bullied"}

var NegativeEmotionWords = []string{
	"angry", "annoyed", "anxious", "ashamed", "awful", "awkward", "bitter", "challenging",
	"cried", "cry", "depressed", "depressing", "desperate", "disappointed", "disappointing",
	"disgusted", "frustrated", "frustrating", "hopeless", "horrible", "hurt", "irritated",
	"miserable", "nervous", "overwhelmed", "painful", "pissed", "sad", "saddening",
	"stressful", "terrible", "tired", "tough", "unbearable", "uncomfortable", "unhappy",
	"unpleasant", "upset", "upsetting", "worried", "grieving", "grief", "lonely", "isolated",
}

var PositiveEmotionWords = []string{"happy", "joyful", "calm", "impressed", "pleased", "elated", "good", "great", "awesome"}

var NegatingWords = []string{
	"not", "doesn't", "isn't", "don't", "won't", "wouldn't", "can't", "shouldn't",
	"couldn't", "wasn't", "didn't", "shan't", "ain't", "aren't",
}

var GratitudeWords = []string{
	"helpful", "appreciate", "nice", "thanks", "thank you", "thank", "awesome", "lovely", "grateful",
}

// PersonalPronouns leaves out the second person.
var PersonalPronouns = []string{
	"i", "i'd", "i've", "i'll", "i'm",
	"we", "we'd", "we're", "we've", "we'll", "us", "ours",
	"he", "he'd", "he'll", "he's", "him", "his",
	"she", "she'd", "she'll", "she's", "her", "hers",
	"they", "they'd", "they'll", "they've", "they're", "them", "theirs",
	"me", "my", "myself", "mine",
}
