// Package workflow загружает определение workflow n8n с диска
// и строит из него тело запроса на создание.
//
// Документ считается непрозрачным: внутренняя структура nodes и
// connections не проверяется. Распознаются только поля верхнего уровня
// name, nodes, connections, settings, tags и active.
package workflow
