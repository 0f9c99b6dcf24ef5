// Package finding defines the Finding record shared by every stage of a
// review, along with its Severity and Source enumerations and the
// NO_ISSUES sentinel used to mark a clean file.
package finding
