// Package server exposes the library over HTTP.
//
// Routes follow the historical URL layout (/books/add, /books/{id}/update,
// /books/update/{id}, /loans/{id}/delete and friends) on a method-aware
// net/http ServeMux. Handlers decode JSON into presence-aware inputs, call
// api.LibraryService, and map failures onto status codes in one place
// (statusFor): not found is 404, invalid input or state is 400, and anything
// else is a 500 whose detail is logged but never sent to the client.
//
// GET endpoints render HTML tables when the Accept header prefers text/html;
// /books/list, /users/list and /loans/list always render HTML.
//
// Every request gets an X-Request-ID that is threaded through the context
// into log lines. When paths.api_token is configured, mutating routes require
// "Authorization: Bearer <token>".
package server
