// Package domain defines the errors business logic raises. Errors are tagged
// with a Code from a closed enumeration so that the proxy layer can translate
// them into http responses without knowing where they came from.
package domain
