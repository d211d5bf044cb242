package analyzer

import "go-body-inspector/pkg/models"

// Rule is one entry of the classification decision list
type Rule struct {
	BodyType  models.BodyType
	Predicate string
	Match     func(r models.Ratios) bool
}

// The order of this list is part of the contract: the first match wins.
var defaultRules = []Rule{
	{
		BodyType:  models.Hourglass,
		Predicate: "waist_to_hip < 0.75 && waist_to_bust < 0.75 && 0.9 < shoulder_to_hip < 1.1",
		Match: func(r models.Ratios) bool {
			return r.WaistToHip < 0.75 && r.WaistToBust < 0.75 && r.ShoulderToHip > 0.9 && r.ShoulderToHip < 1.1
		},
	},
	{
		BodyType:  models.Pear,
		Predicate: "waist_to_hip < 0.8 && shoulder_to_hip < 0.9",
		Match: func(r models.Ratios) bool {
			return r.WaistToHip < 0.8 && r.ShoulderToHip < 0.9
		},
	},
	{
		BodyType:  models.InvertedTriangle,
		Predicate: "shoulder_to_hip > 1.15 && waist_to_bust < 0.85",
		Match: func(r models.Ratios) bool {
			return r.ShoulderToHip > 1.15 && r.WaistToBust < 0.85
		},
	},
	{
		BodyType:  models.Apple,
		Predicate: "waist_to_bust > 0.85 && waist_to_hip > 0.85",
		Match: func(r models.Ratios) bool {
			return r.WaistToBust > 0.85 && r.WaistToHip > 0.85
		},
	},
	fallbackRule,
}

var fallbackRule = Rule{
	BodyType:  models.Rectangle,
	Predicate: "default",
	Match:     func(models.Ratios) bool { return true },
}

// Rules returns a copy of the decision list in evaluation order
func Rules() []Rule {
	return append([]Rule(nil), defaultRules...)
}

// Classify assigns exactly one body type to a ratio set
func Classify(r models.Ratios) models.BodyType {
	return MatchRule(r).BodyType
}

// MatchRule returns the first rule whose predicate holds
func MatchRule(r models.Ratios) Rule {
	return firstMatch(defaultRules, r)
}

func firstMatch(rules []Rule, r models.Ratios) Rule {
	for _, rule := range rules {
		if rule.Match(r) {
			return rule
		}
	}
	return fallbackRule
}
