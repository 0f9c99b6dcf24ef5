// Package github provides a minimal GitHub REST API client for posting
// refract findings as pull-request review comments.
//
// The repository is taken from GITHUB_REPOSITORY or the local git remote,
// and requests authenticate with GITHUB_TOKEN. [BuildReview] places a
// finding inline only when the PR diff adds its line; the rest go into the
// review summary.
package github
