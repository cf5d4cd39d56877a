// Package marketplace looks up published extensions in the Visual Studio
// Marketplace gallery API. Each lookup is a single extension-query request
// keyed by the publisher-qualified id; the client never retries.
package marketplace
