// Package license holds the one piece of business logic original to this
// service: the trial/credit/subscription gate in front of the translation
// API, and the activation flow that flips a user to a paid subscription
// after a confirmed payment.
//
// The evaluator's canonical user schema is the subscription status enum
// combined with both free allowances: a trial window counted in whole
// days from provisioning, then a starting credit balance spent one unit
// per permitted call.
package license
