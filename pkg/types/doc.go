// Package types defines the Store and ProductTable interfaces, the Product
// entity, and the standard errors for the stockroom inventory tool.
package types
