package httputil

var RequestsTotal = requestsTotal
