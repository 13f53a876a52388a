package common

// AccessTokenHeaderName is the HTTP header used to carry the bearer token on
// outbound requests to the CrewDesk backend.
const AccessTokenHeaderName = "X-Crewdesk-Token"
