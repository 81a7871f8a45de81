// Package custodytest provides mocks and helpers used by the tests of all
// custody packages.
package custodytest
