// Package document provides the value model used on the wire between docsink and a
// document database: a closed set of value kinds (null, bool, int, double, string, date,
// list and map) with an insertion-ordered map for documents.
//
// Documents are serialized to relaxed extended JSON and parsed back with fastjson. Dates
// are written as {"$date": <unix millis>} and doubles always carry a fraction or an
// exponent so that a round trip keeps int and double values apart. Map keys starting with
// "$" are written with an extra "$", which keeps user maps apart from tagged values.
package document
