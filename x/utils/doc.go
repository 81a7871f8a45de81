/*
Package utils holds decorators shared by every transaction: panic recovery,
logging, savepoints, action events and prometheus metrics.
*/
package utils
