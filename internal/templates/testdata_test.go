package templates

const scriptBindingsJSON = `{
  "variables": {
    "authLevelLabel": "$httpTrigger_authLevel_label"
  },
  "bindings": [
    {
      "type": "httpTrigger",
      "direction": "in",
      "displayName": "$httpTrigger_displayName",
      "settings": [
        {
          "name": "authLevel",
          "value": "enum",
          "label": "[variables('authLevelLabel')]",
          "help": "plain help text",
          "defaultValue": "function",
          "enum": [
            {"value": "anonymous", "display": "$authLevel_anonymous"},
            {"value": "function", "display": "Function"},
            {"value": "admin"}
          ]
        },
        {
          "name": "route",
          "value": "string",
          "label": "Route",
          "validators": [{"expression": "^[a-z/]*$", "errorText": "$route_invalid"}]
        }
      ]
    },
    {
      "type": "timerTrigger",
      "direction": "in",
      "displayName": "Timer trigger",
      "settings": [
        {"name": "schedule", "value": "string", "label": "Schedule", "defaultValue": "0 */5 * * * *", "required": true}
      ]
    },
    {
      "type": "queueTrigger",
      "direction": "in",
      "displayName": "Queue trigger",
      "settings": [
        {"name": "connection", "value": "string", "resource": "Storage", "label": "Connection"},
        {"name": "queueName", "value": "string", "label": "Queue", "defaultValue": "myqueue-items"}
      ]
    }
  ]
}`

const scriptTemplatesJSON = `[
  {
    "id": "HttpTrigger-JavaScript",
    "function": {
      "bindings": [
        {"authLevel": "anonymous", "type": "httpTrigger", "direction": "in", "name": "req", "methods": ["get", "post"]},
        {"type": "http", "direction": "out", "name": "res"}
      ]
    },
    "metadata": {
      "name": "HTTP trigger",
      "description": "$HttpTrigger_description",
      "defaultFunctionName": "HttpTrigger",
      "language": "JavaScript",
      "triggerType": "httpTrigger",
      "category": ["$temp_category_core"],
      "userPrompt": ["authLevel", "route"]
    },
    "files": {"index.js": "module.exports = async function (context, req) {};"}
  },
  {
    "id": "TimerTrigger-JavaScript",
    "function": {
      "bindings": [
        {"type": "timerTrigger", "direction": "in", "name": "myTimer", "schedule": ""}
      ]
    },
    "metadata": {
      "name": "Timer trigger",
      "defaultFunctionName": "TimerTrigger",
      "language": "JavaScript",
      "userPrompt": ["schedule"]
    },
    "files": {"index.js": "module.exports = async function (context, myTimer) {};"}
  },
  {
    "id": "MissingMetadata-JavaScript",
    "files": {}
  },
  {
    "id": "QueueTrigger-C#",
    "function": {
      "bindings": [
        {"type": "queueTrigger", "direction": "in", "name": "myQueueItem", "connection": "", "queueName": "orders"}
      ]
    },
    "metadata": {
      "name": "Queue trigger",
      "language": "C#",
      "userPrompt": ["connection", "queueName"]
    },
    "files": {"run.csx": "public static void Run(string myQueueItem) {}"}
  }
]`

const scriptResourcesJSON = `{
  "en": {
    "httpTrigger_displayName": "HTTP trigger",
    "httpTrigger_authLevel_label": "Authorization level",
    "authLevel_anonymous": "Anonymous",
    "HttpTrigger_description": "A function that runs on HTTP requests",
    "temp_category_core": "Core",
    "route_invalid": "Route may only contain lower-case letters and slashes"
  },
  "de": {
    "httpTrigger_authLevel_label": "Autorisierungsstufe",
    "authLevel_anonymous": ""
  }
}`

const userPromptsJSON = `[
  {
    "id": "trigger-functionName",
    "name": "functionName",
    "label": "$functionName_label",
    "value": "string",
    "required": true,
    "validators": [{"expression": "^[A-Za-z][A-Za-z0-9_]*$", "errorText": "$functionName_invalid"}]
  },
  {
    "id": "http-trigger-auth-level",
    "name": "authLevel",
    "label": "Auth level",
    "value": "enum",
    "defaultValue": "FUNCTION",
    "enum": [{"value": "ANONYMOUS", "display": "Anonymous"}, {"value": "FUNCTION", "display": "Function"}]
  },
  {
    "id": "app-selectedFileName",
    "name": "selectedFileName",
    "label": "File",
    "value": "string"
  },
  {
    "name": "missing-id"
  }
]`

const jobTemplatesJSON = `[
  {
    "id": "HttpTrigger-Python",
    "name": "HTTP trigger",
    "description": "$http_description",
    "language": "Python",
    "programmingModel": "v2",
    "jobs": [
      {
        "name": "Create New Project",
        "type": "CreateNewApp",
        "inputs": [
          {"paramId": "TRIGGER-FUNCTIONNAME", "assignTo": "$(FUNCTION_NAME_INPUT)", "defaultValue": "http_trigger"},
          {"paramId": "http-trigger-auth-level", "assignTo": "$(AUTHLEVEL_INPUT)", "required": true}
        ],
        "actions": ["writeFile_FunctionApp", "READFILECONTENT_FUNCTIONAPP"]
      },
      {
        "name": "Append to file",
        "type": "AppendToFile",
        "condition": {"name": "$(SELECTED_FILEPATH)"},
        "inputs": [
          {"paramId": "app-selectedFileName", "assignTo": "$(SELECTED_FILEPATH)"}
        ],
        "actions": ["readFileContent_Blueprint", "appendToFile_Blueprint"]
      }
    ],
    "actions": [
      {"name": "readFileContent_FunctionApp", "type": "GetTemplateFileContent", "assignTo": "$(FUNCTION_APP_CONTENT)", "filePath": "function_app.py"},
      {"name": "writeFile_FunctionApp", "type": "WriteToFile", "source": "$(FUNCTION_APP_CONTENT)", "filePath": "$(SELECTED_FILEPATH).py", "errorText": "$write_failed"},
      {"name": "readFileContent_Blueprint", "type": "GetTemplateFileContent", "assignTo": "$(BLUEPRINT_CONTENT)", "filePath": "blueprint_body.py"},
      {"name": "appendToFile_Blueprint", "type": "AppendToFile", "source": "$(BLUEPRINT_CONTENT)", "filePath": "$(SELECTED_FILEPATH)", "continueOnError": true}
    ],
    "files": {
      "function_app.py": "app = func.FunctionApp()\n@app.route(route=\"$(FUNCTION_NAME_INPUT)\", auth_level=func.AuthLevel.$(AUTHLEVEL_INPUT))\n",
      "blueprint_body.py": "@bp.route(route=\"$(FUNCTION_NAME_INPUT)\")\n"
    }
  },
  {
    "id": "MCPToolTrigger-Python",
    "name": "MCP tool trigger",
    "language": "Python",
    "jobs": [],
    "actions": [],
    "files": {}
  },
  {
    "id": "McpTrigger-TypeScript",
    "name": "MCP trigger",
    "language": "TypeScript",
    "jobs": [],
    "actions": [],
    "files": {}
  },
  {
    "id": "TimerTrigger-Python",
    "name": "Timer trigger",
    "language": "Python",
    "jobs": [
      {"name": "Create", "type": "CreateNewApp", "inputs": [], "actions": ["doesNotExist"]}
    ],
    "actions": [],
    "files": {}
  },
  {
    "id": "BadActionType-Python",
    "name": "Bad",
    "language": "Python",
    "jobs": [],
    "actions": [{"name": "x", "type": "DeleteEverything"}],
    "files": {}
  }
]`

const jobResourcesJSON = `{
  "en": {
    "functionName_label": "Function name",
    "functionName_invalid": "Function names must start with a letter",
    "http_description": "Runs on HTTP requests",
    "write_failed": "Could not write the function app file"
  }
}`
