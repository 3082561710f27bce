// Package main provides a command for running a trained feed-forward
// network over an ARFF dataset. It loads the data and the model, classifies
// every row and prints the predicted class labels, one per line.
package main
