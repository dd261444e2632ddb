// Package codegen turns one API operation into a client-side code
// example for a chosen stack. Every stack has a deterministic template;
// an optional generation engine can improve on it and falls back to the
// template on any failure.
package codegen

import "slices"

// Stack categories, used for UI grouping only.
const (
	CategoryWeb    = "web"
	CategoryMobile = "mobile"
)

// Stack describes one supported client stack.
type Stack struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// stacks is the curated registry. The order is part of the contract:
// web stacks first, then mobile, driving sidebar grouping downstream.
var stacks = []Stack{
	{Value: "react-fetch", Label: "React + fetch", Category: CategoryWeb},
	{Value: "react-axios", Label: "React + axios", Category: CategoryWeb},
	{Value: "vue3", Label: "Vue 3", Category: CategoryWeb},
	{Value: "nextjs", Label: "Next.js", Category: CategoryWeb},
	{Value: "angular", Label: "Angular", Category: CategoryWeb},
	{Value: "svelte", Label: "Svelte", Category: CategoryWeb},
	{Value: "vanilla", Label: "Vanilla JS", Category: CategoryWeb},
	{Value: "react-native", Label: "React Native", Category: CategoryMobile},
	{Value: "flutter", Label: "Flutter", Category: CategoryMobile},
	{Value: "swift-ios", Label: "Swift (iOS)", Category: CategoryMobile},
	{Value: "kotlin-android", Label: "Kotlin (Android)", Category: CategoryMobile},
}

// Stacks returns the registry in its curated order. The slice is a
// copy; callers cannot reorder the registry.
func Stacks() []Stack {
	return slices.Clone(stacks)
}

// LookupStack finds a stack by its machine id.
func LookupStack(value string) (Stack, bool) {
	for _, s := range stacks {
		if s.Value == value {
			return s, true
		}
	}
	return Stack{}, false
}
