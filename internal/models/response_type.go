package models

import (
	"sort"
	"strings"
)

// ResponseType tags a user utterance with a coarse reading of what it does.
type ResponseType string

const (
	ResponseTypeYes           ResponseType = "YES"
	ResponseTypeNo            ResponseType = "NO"
	ResponseTypePositive      ResponseType = "POSITIVE"
	ResponseTypeNegative      ResponseType = "NEGATIVE"
	ResponseTypeDontKnow      ResponseType = "DONT_KNOW"
	ResponseTypeDisinterested ResponseType = "DISINTERESTED"
	ResponseTypeChangeTopic   ResponseType = "CHANGE_TOPIC"
	ResponseTypeRequestRepeat ResponseType = "REQUEST_REPEAT"
	ResponseTypeThats         ResponseType = "THATS"
	ResponseTypeDidntKnow     ResponseType = "DIDNT_KNOW"
	ResponseTypeComplaint     ResponseType = "COMPLAINT"
	ResponseTypeBackchannel   ResponseType = "BACKCHANNEL"
	ResponseTypeOpinion       ResponseType = "OPINION"
	ResponseTypeQuestion      ResponseType = "QUESTION"
	ResponseTypeNothing       ResponseType = "NOTHING"
	ResponseTypeEverything    ResponseType = "EVERYTHING"
	ResponseTypeMusicKeyword  ResponseType = "MUSIC_KEYWORD"
	ResponseTypeFoodKeyword   ResponseType = "FOOD_KEYWORD"
)

// ResponseTypes is a set of tags for one utterance.
type ResponseTypes map[ResponseType]struct{}

// NewResponseTypes builds a set from the given tags.
func NewResponseTypes(types ...ResponseType) ResponseTypes {
	rt := make(ResponseTypes, len(types))
	for _, t := range types {
		rt[t] = struct{}{}
	}
	return rt
}

func (rt ResponseTypes) Add(t ResponseType) { rt[t] = struct{}{} }

func (rt ResponseTypes) Has(t ResponseType) bool {
	_, ok := rt[t]
	return ok
}

// Contains is the string-keyed form of Has, convenient in expressions.
func (rt ResponseTypes) Contains(name string) bool {
	return rt.Has(ResponseType(strings.ToUpper(name)))
}

// Sorted lists the tags alphabetically.
func (rt ResponseTypes) Sorted() []ResponseType {
	out := make([]ResponseType, 0, len(rt))
	for t := range rt {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
